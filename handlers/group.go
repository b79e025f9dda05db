package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"yatube/models"
)

type GroupInfo struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type GroupCreateRequest struct {
	Title       string `form:"title" binding:"required"`
	Slug        string `form:"slug" binding:"required"`
	Description string `form:"description"`
}

func groupInfo(g *models.Group) GroupInfo {
	return GroupInfo{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}

func (a *Admin) GroupList(c *gin.Context, user *models.User) {
	groups, err := models.GroupList()
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]GroupInfo, 0, len(groups))
	for i := range groups {
		result = append(result, groupInfo(&groups[i]))
	}
	c.JSON(http.StatusOK, result)
}

func (a *Admin) GroupCreate(c *gin.Context, user *models.User) {
	r := GroupCreateRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	group, err := models.GroupCreate(r.Title, r.Slug, r.Description)
	switch {
	case errors.Is(err, models.ErrSlugTaken):
		c.JSON(http.StatusConflict, Response{err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	c.JSON(http.StatusOK, groupInfo(&group))
}
