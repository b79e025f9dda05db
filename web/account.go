package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yatube/auth"
	"yatube/logs"
	"yatube/models"
)

const msgBadLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

func (s *Site) LoginForm(c *gin.Context) {
	s.render(c, http.StatusOK, "login.tmpl", gin.H{"Title": "Log in", "Next": c.Query("next")})
}

func (s *Site) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	next := c.PostForm("next")
	user, ok := models.UserLogin(username, c.PostForm("password"))
	if !ok {
		s.render(c, http.StatusOK, "login.tmpl", gin.H{"Title": "Log in", "Error": msgBadLogin, "Next": next, "Username": username})
		return
	}
	if err := auth.LoadSession(c).LoginUser(&user); err != nil {
		s.fail(c, err)
		return
	}
	logs.Ctx(c.Request.Context()).Info().Uint64(logs.FieldUserID, user.ID).Msg("login")
	c.Redirect(http.StatusFound, auth.SafeNext(next, "/"))
}

func (s *Site) Logout(c *gin.Context) {
	if err := auth.LoadSession(c).LogoutUser(); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Site) SignupForm(c *gin.Context) {
	s.render(c, http.StatusOK, "signup.tmpl", gin.H{"Title": "Sign up"})
}

func (s *Site) Signup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	user, err := models.UserCreate(username, email, c.PostForm("password"))
	if err != nil {
		s.render(c, http.StatusOK, "signup.tmpl", gin.H{"Title": "Sign up", "Error": err.Error(), "Username": username, "Email": email})
		return
	}
	if err = auth.LoadSession(c).LoginUser(&user); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
