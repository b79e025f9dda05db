package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/db"
	"yatube/models"
)

type FollowInfo struct {
	ID     uint64 `json:"id"`
	User   string `json:"user"`
	Author string `json:"author"`
}

func (a *Admin) FollowList(c *gin.Context, user *models.User) {
	follows := []models.Follow{}
	err := db.Instance.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Author").
		Order("id ASC").
		Find(&follows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]FollowInfo, 0, len(follows))
	for _, f := range follows {
		result = append(result, FollowInfo{ID: f.ID, User: f.User.Username, Author: f.Author.Username})
	}
	c.JSON(http.StatusOK, result)
}
