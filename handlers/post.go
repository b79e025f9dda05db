package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"

	"yatube/db"
	"yatube/logs"
	"yatube/models"
	"yatube/publish"
	"yatube/utils"
)

const emptyValue = "-empty-"

type PostInfo struct {
	ID      uint64 `json:"pk"`
	Group   string `json:"group"`
	Text    string `json:"text"`
	PubDate int64  `json:"pub_date"`
	Author  string `json:"author"`
}

type PostListRequest struct {
	Search string `form:"search"`
	From   int64  `form:"from"` // unix seconds, inclusive
	To     int64  `form:"to"`   // unix seconds, exclusive
	Page   string `form:"page"`
}

type PostGroupRequest struct {
	Group string `form:"group"`
}

func (r *PostListRequest) scope(tx *gorm.DB) *gorm.DB {
	if search := strings.TrimSpace(r.Search); search != "" {
		tx = tx.Where("posts.text LIKE ?", "%"+search+"%")
	}
	if r.From > 0 {
		tx = tx.Where("posts.created_at >= ?", r.From)
	}
	if r.To > 0 {
		tx = tx.Where("posts.created_at < ?", r.To)
	}
	return tx
}

func postInfo(p *models.Post) PostInfo {
	info := PostInfo{
		ID:      p.ID,
		Group:   emptyValue,
		Text:    p.Text,
		PubDate: p.CreatedAt,
		Author:  p.Author.Username,
	}
	if p.Group != nil {
		info.Group = p.Group.Title
	}
	return info
}

// PostList is the searchable post list, newest first
func (a *Admin) PostList(c *gin.Context, user *models.User) {
	r := PostListRequest{}
	if err := c.ShouldBindWith(&r, binding.Query); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	tx := db.Instance.WithContext(c.Request.Context())
	if isNotModified(c, tx.Model(&models.Post{}).Select("coalesce(max(updated_at), 0)")) {
		return
	}
	posts := []models.Post{}
	page := utils.ParsePage(r.Page)
	err := tx.Model(&models.Post{}).
		Scopes(r.scope).
		Preload("Author").
		Preload("Group").
		Order(models.NewestFirst).
		Limit(adminPageSize).
		Offset((page - 1) * adminPageSize).
		Find(&posts).Error
	if err != nil {
		logs.Ctx(c.Request.Context()).Error().Err(err).Msg("admin post list")
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	result := make([]PostInfo, 0, len(posts))
	for i := range posts {
		result = append(result, postInfo(&posts[i]))
	}
	c.JSON(http.StatusOK, result)
}

// PostSetGroup moves a post to another group, an empty value takes it out of any group
func (a *Admin) PostSetGroup(c *gin.Context, user *models.User) {
	id := utils.StringToUInt64(c.Param("id"))
	r := PostGroupRequest{}
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	tx := db.Instance.WithContext(c.Request.Context())
	post := models.Post{}
	if err := tx.First(&post, id).Error; err != nil {
		if models.IsNotFound(err) {
			c.JSON(http.StatusNotFound, Response{"post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	post.GroupID = nil
	if r.Group != "" {
		groupID := utils.StringToUInt64(r.Group)
		group := models.Group{}
		if err := tx.First(&group, groupID).Error; err != nil || groupID == 0 {
			c.JSON(http.StatusBadRequest, Response{"unknown group"})
			return
		}
		post.GroupID = &group.ID
	}
	if err := post.Save(tx); err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	if err := tx.Preload("Author").Preload("Group").First(&post, post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	c.JSON(http.StatusOK, postInfo(&post))
}

type ThumbInfo struct {
	ID    uint64 `json:"pk"`
	Image string `json:"image"`
	Thumb string `json:"thumb"`
}

// PostRebuildThumb makes the thumbnail of the post again from its stored image
func (a *Admin) PostRebuildThumb(c *gin.Context, user *models.User) {
	post, err := a.Publish.RebuildThumb(c.Request.Context(), utils.StringToUInt64(c.Param("id")))
	switch {
	case errors.Is(err, publish.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{"post not found"})
		return
	case errors.Is(err, publish.ErrNoImage):
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	case err != nil:
		logs.Ctx(c.Request.Context()).Error().Err(err).Msg("admin thumbnail rebuild")
		c.JSON(http.StatusInternalServerError, Response{"thumbnail error"})
		return
	}
	c.JSON(http.StatusOK, ThumbInfo{ID: post.ID, Image: post.Image, Thumb: post.Thumb})
}
