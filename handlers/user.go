package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/db"
	"yatube/models"
)

type UserInfo struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Permissions []int  `json:"permissions"`
}

func (a *Admin) UserList(c *gin.Context, user *models.User) {
	users := []models.User{}
	err := db.Instance.WithContext(c.Request.Context()).
		Preload("Grants").
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]UserInfo, 0, len(users))
	for i := range users {
		result = append(result, UserInfo{
			ID:          users[i].ID,
			Username:    users[i].Username,
			Email:       users[i].Email,
			Permissions: users[i].GetPermissions(),
		})
	}
	c.JSON(http.StatusOK, result)
}
