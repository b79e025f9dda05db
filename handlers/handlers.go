package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube/auth"
	"yatube/cache"
	"yatube/models"
	"yatube/publish"
	"yatube/storage"
)

type Response struct {
	Error string `json:"error"`
}

const (
	etagHeader    = "ETag"
	adminPageSize = 100
)

var (
	// Predefined errors
	OKResponse       = Response{}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
)

// Admin is the JSON console for site administrators
type Admin struct {
	Cache   cache.PageCache
	Storage storage.StorageAPI
	Publish *publish.Service
}

// Register adds the console routes, all of them need PermissionAdmin
func (a *Admin) Register(r *auth.Router) {
	r.GET("/admin/posts", a.PostList, models.PermissionAdmin)
	r.POST("/admin/posts/:id/group", a.PostSetGroup, models.PermissionAdmin)
	r.POST("/admin/posts/:id/thumb", a.PostRebuildThumb, models.PermissionAdmin)
	r.GET("/admin/groups", a.GroupList, models.PermissionAdmin)
	r.POST("/admin/groups", a.GroupCreate, models.PermissionAdmin)
	r.GET("/admin/follows", a.FollowList, models.PermissionAdmin)
	r.GET("/admin/users", a.UserList, models.PermissionAdmin)
	r.POST("/admin/cache/clear", a.CacheClear, models.PermissionAdmin)
	r.GET("/admin/storage", a.StorageInfo, models.PermissionAdmin)
}

func isNotModified(c *gin.Context, tx *gorm.DB) bool {
	// Set the current ETag in all cases
	row := tx.Row()
	lastUpdatedAt := uint64(0)
	if row.Scan(&lastUpdatedAt) != nil {
		return false
	}
	c.Header("cache-control", "private, max-age=1")
	c.Header(etagHeader, strconv.FormatUint(lastUpdatedAt, 10))

	// ETag contains last updated post time
	remoteLastUpdatedAt, err := strconv.ParseUint(c.Request.Header.Get("If-None-Match"), 10, 64)
	if err == nil && remoteLastUpdatedAt == lastUpdatedAt {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
