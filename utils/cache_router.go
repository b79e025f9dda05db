package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
)

// CacheRouter sets the cache-control header of the routes it wraps
type CacheRouter struct {
	CacheTime int // seconds, defaults to CacheNoCache = 0
	// Public lets shared caches keep the response, used for uploaded media
	Public bool
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	scope := "private"
	if cr.Public {
		scope = "public"
	}
	return func(c *gin.Context) {
		switch cr.CacheTime {
		case CacheCustom:
		case CacheNoCache:
			c.Header("cache-control", "no-cache")
		default:
			c.Header("cache-control", scope+", max-age="+strconv.Itoa(cr.CacheTime))
		}
		c.Next()
	}
}
