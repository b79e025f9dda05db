package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"yatube/models"
)

const LoginPath = "/auth/login/"

type Action uint8

const (
	ActionView       Action = iota // index, group, profile and post pages
	ActionCreatePost               //
	ActionComment                  //
	ActionEditPost                 //
	ActionFollow                   // follow, unfollow
	ActionFollowFeed               //
)

type Decision uint8

const (
	Allow          Decision = iota
	DenyToResource          // silently send the actor back to the resource page
	DenyToLogin             // send the actor to the login page
)

// Decide tells whether actor may perform action. post is only consulted for ActionEditPost.
func Decide(actor *models.User, action Action, post *models.Post) Decision {
	if action == ActionView {
		return Allow
	}
	if !actor.IsAuthenticated() {
		return DenyToLogin
	}
	if action == ActionEditPost && (post == nil || post.AuthorID != actor.ID) {
		return DenyToResource
	}
	return Allow
}

// CanFollow is false for anonymous actors and for following oneself
func CanFollow(actor, author *models.User) bool {
	return actor.IsAuthenticated() && author != nil && author.ID != 0 && actor.ID != author.ID
}

// LoginURL points at the login page with next set to the given path; slashes stay readable
func LoginURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
	c.Abort()
}

// SafeNext returns next when it is a local path, fallback otherwise
func SafeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
