package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"yatube/models"
)

func TestDecide(t *testing.T) {
	anonymous := &models.User{}
	author := &models.User{ID: 1, Username: "auth"}
	reader := &models.User{ID: 2, Username: "reader"}
	post := &models.Post{ID: 10, AuthorID: author.ID}

	tests := []struct {
		name   string
		actor  *models.User
		action Action
		post   *models.Post
		want   Decision
	}{
		{"anonymous views", anonymous, ActionView, nil, Allow},
		{"nil actor views", nil, ActionView, nil, Allow},
		{"anonymous creates", anonymous, ActionCreatePost, nil, DenyToLogin},
		{"nil actor creates", nil, ActionCreatePost, nil, DenyToLogin},
		{"anonymous comments", anonymous, ActionComment, post, DenyToLogin},
		{"anonymous follows", anonymous, ActionFollow, nil, DenyToLogin},
		{"anonymous feed", anonymous, ActionFollowFeed, nil, DenyToLogin},
		{"anonymous edits", anonymous, ActionEditPost, post, DenyToLogin},
		{"reader creates", reader, ActionCreatePost, nil, Allow},
		{"reader comments", reader, ActionComment, post, Allow},
		{"reader edits", reader, ActionEditPost, post, DenyToResource},
		{"author edits", author, ActionEditPost, post, Allow},
		{"edit without post", author, ActionEditPost, nil, DenyToResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.actor, tt.action, tt.post))
		})
	}
}

func TestCanFollow(t *testing.T) {
	a := &models.User{ID: 1}
	b := &models.User{ID: 2}
	assert.True(t, CanFollow(a, b))
	assert.False(t, CanFollow(a, a))
	assert.False(t, CanFollow(&models.User{}, b))
	assert.False(t, CanFollow(a, nil))
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/posts/1/edit/", LoginURL("/posts/1/edit/"))
	assert.Equal(t, "/auth/login/?next=/%3Fpage%3D2", LoginURL("/?page=2"))
	assert.Equal(t, "/auth/login/?next=/profile/leo/follow/", LoginURL("/profile/leo/follow/"))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/create/", SafeNext("/create/", "/"))
	assert.Equal(t, "/", SafeNext("https://evil.example/", "/"))
	assert.Equal(t, "/", SafeNext("//evil.example/", "/"))
	assert.Equal(t, "/", SafeNext("", "/"))
}

func TestRouterAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("sessionid", cookie.NewStore([]byte("secret"))))
	called := false
	handler := func(c *gin.Context, user *models.User) { called = true }
	(&Router{Base: r, LoginRedirect: true}).GET("/create/", handler)
	(&Router{Base: r}).GET("/admin/posts", handler, models.PermissionAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}
