package web

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yatube/auth"
	"yatube/cache"
	"yatube/config"
	"yatube/feed"
	"yatube/forms"
	"yatube/logs"
	"yatube/publish"
	"yatube/storage"
	"yatube/templates"
	"yatube/utils"
)

const mediaCacheTime = 7 * 86400

// Site serves the HTML pages
type Site struct {
	Publish   *publish.Service
	Pages     *cache.Pages
	Storage   storage.StorageAPI
	Templates *template.Template
}

var funcs = template.FuncMap{
	"date": utils.FormatUnixDate,
	"media": func(path string) string {
		return strings.TrimSuffix(config.MEDIA_URL, "/") + "/" + strings.TrimPrefix(path, "/")
	},
}

func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templates.FS, "*.tmpl")
}

func New(s storage.StorageAPI, pages *cache.Pages) (*Site, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	return &Site{
		Publish:   publish.New(s),
		Pages:     pages,
		Storage:   s,
		Templates: tmpl,
	}, nil
}

// Register adds the site routes to router, the session middleware must already be installed
func (s *Site) Register(router *gin.Engine) {
	router.SetHTMLTemplate(s.Templates)
	// Pages open to everyone
	router.GET("/", s.Index)
	router.GET("/group/:slug/", s.GroupPosts)
	router.GET("/profile/:username/", s.Profile)
	router.GET("/posts/:id/", s.PostDetail)
	router.GET("/media/*filepath", (&utils.CacheRouter{CacheTime: mediaCacheTime, Public: true}).Handler(), s.Media)
	// Accounts
	router.GET("/auth/login/", s.LoginForm)
	router.POST("/auth/login/", s.Login)
	router.Any("/auth/logout/", s.Logout)
	router.GET("/auth/signup/", s.SignupForm)
	router.POST("/auth/signup/", s.Signup)
	// Signed in users only
	authRouter := &auth.Router{Base: router, LoginRedirect: true}
	authRouter.Any("/create/", s.PostCreate)
	authRouter.Any("/posts/:id/edit/", s.PostEdit)
	authRouter.POST("/posts/:id/comment/", s.AddComment)
	authRouter.GET("/profile/:username/follow/", s.ProfileFollow)
	authRouter.GET("/profile/:username/unfollow/", s.ProfileUnfollow)
	authRouter.GET("/follow/", s.FollowIndex)

	router.NoRoute(s.NotFound)
}

// data adds what the layout needs to the page values
func (s *Site) data(c *gin.Context, values gin.H) gin.H {
	values["User"] = auth.CurrentUser(c)
	if _, ok := values["Errors"]; !ok {
		values["Errors"] = forms.Errors{}
	}
	return values
}

func (s *Site) render(c *gin.Context, status int, name string, values gin.H) {
	c.HTML(status, name, s.data(c, values))
}

func (s *Site) NotFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "404.tmpl", gin.H{"Title": "Not found", "Path": c.Request.URL.Path})
}

// fail answers with the page matching err
func (s *Site) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrNotFound), errors.Is(err, publish.ErrNotFound):
		s.NotFound(c)
	case errors.Is(err, publish.ErrLoginRequired):
		auth.RedirectToLogin(c)
	default:
		logs.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		s.render(c, http.StatusInternalServerError, "500.tmpl", gin.H{"Title": "Server error"})
	}
}

func (s *Site) Media(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("filepath"), "/")
	if p == "" || !s.Storage.Exists(p) {
		s.NotFound(c)
		return
	}
	s.Storage.Serve(p, c.Request, c.Writer)
}
