package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"yatube/logs"
	"yatube/models"
)

const (
	userIdKey  = "id"
	contextKey = "auth.user"
)

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) LoginUser(user *models.User) error {
	s.Clear()
	s.Set(userIdKey, user.ID)
	return s.Save()
}

func (s *Session) LogoutUser() error {
	s.Delete(userIdKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}

func (s *Session) UserID() uint64 {
	id, _ := s.Get(userIdKey).(uint64)
	return id
}

// User returns the signed in user, or a zero User for anonymous visitors
func (s *Session) User() (user models.User) {
	id := s.UserID()
	if id == 0 {
		return
	}
	user, err := models.UserByID(id)
	if err != nil {
		return models.User{}
	}
	return
}

// CurrentUser loads the session user once per request
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(contextKey); ok {
		return v.(*models.User)
	}
	user := LoadSession(c).User()
	c.Set(contextKey, &user)
	if user.ID != 0 {
		c.Set(logs.FieldUserID, user.ID)
	}
	return &user
}
