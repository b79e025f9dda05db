package main

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"

	"yatube/auth"
	"yatube/cache"
	"yatube/config"
	"yatube/db"
	"yatube/handlers"
	"yatube/logs"
	"yatube/models"
	"yatube/storage"
	"yatube/utils"
	"yatube/web"
)

func pageCache() cache.PageCache {
	if config.REDIS_ADDRESS == "" {
		return cache.NewMemory()
	}
	c, err := cache.NewRedis(config.REDIS_ADDRESS, config.REDIS_PASSWORD, config.REDIS_DB, "yatube")
	if err != nil {
		logs.L().Warn().Err(err).Str("address", config.REDIS_ADDRESS).Msg("redis unavailable, caching pages in memory")
		return cache.NewMemory()
	}
	return c
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Config: %v", err)
	}
	logs.Init(config.LOG_LEVEL, config.LOG_PRETTY)
	db.Init(config.MYSQL_DSN, config.POSTGRES_DSN, config.SQLITE_FILE, config.DEBUG_MODE)
	if err := models.Init(); err != nil {
		log.Fatalf("Migrations: %v", err)
	}
	media, err := storage.New()
	if err != nil {
		log.Fatalf("Storage: %v", err)
	}
	pages := pageCache()
	site, err := web.New(media, &cache.Pages{
		Cache: pages,
		TTL:   time.Duration(config.INDEX_CACHE_SECONDS) * time.Second,
	})
	if err != nil {
		log.Fatalf("Templates: %v", err)
	}

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logs.GinMiddleware())
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(logs.ErrorLogMiddleware)
	}
	if config.CORS_ORIGINS != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Split(config.CORS_ORIGINS, ","),
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           30 * 24 * time.Hour,
		}))
	}

	sessionStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: config.SESSION_MAX_AGE, HttpOnly: true})
	router.Use(sessions.Sessions(config.SESSION_COOKIE, sessionStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/"})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that

	// Admin console
	admin := &handlers.Admin{Cache: pages, Storage: media, Publish: site.Publish}
	admin.Register(&auth.Router{Base: router})
	// Site pages
	site.Register(router)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
