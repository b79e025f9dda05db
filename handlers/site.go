package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/logs"
	"yatube/models"
)

type StorageInfo struct {
	TotalSpace uint64 `json:"total_space"`
	FreeSpace  uint64 `json:"free_space"`
}

// CacheClear drops every cached page, the next request renders from current data
func (a *Admin) CacheClear(c *gin.Context, user *models.User) {
	if err := a.Cache.Clear(c.Request.Context()); err != nil {
		logs.Ctx(c.Request.Context()).Error().Err(err).Msg("page cache clear")
		c.JSON(http.StatusInternalServerError, Response{"cache error"})
		return
	}
	logs.Ctx(c.Request.Context()).Info().Uint64(logs.FieldUserID, user.ID).Msg("page cache cleared")
	c.JSON(http.StatusOK, OKResponse)
}

func (a *Admin) StorageInfo(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, StorageInfo{
		TotalSpace: a.Storage.GetTotalSpace(),
		FreeSpace:  a.Storage.GetFreeSpace(),
	})
}
