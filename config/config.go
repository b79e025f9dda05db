package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	TLS_DOMAINS         = ""             // e.g. "example.com,example2.com"
	BIND_ADDRESS        = "0.0.0.0:8000" //
	DEBUG_MODE          = true           //
	MYSQL_DSN           = ""             // MySQL will be used if this is set
	POSTGRES_DSN        = ""             // PostgreSQL will be used if MYSQL_DSN is not set and this is
	SQLITE_FILE         = "yatube.db"    // SQLite fallback
	SESSION_KEY         = "change me, this is not a secret"
	SESSION_COOKIE      = "sessionid"
	SESSION_MAX_AGE     = 14 * 86400 // seconds
	CORS_ORIGINS        = "*"        // comma separated
	INDEX_CACHE_SECONDS = 20         // home page cache window
	REDIS_ADDRESS       = ""         // Redis page cache is used if set, in-memory otherwise
	REDIS_PASSWORD      = ""
	REDIS_DB            = 0
	MEDIA_ROOT          = "media"   // disk storage root
	MEDIA_URL           = "/media/" // public prefix for uploaded files
	S3_BUCKET           = ""        // S3 storage is used instead of MEDIA_ROOT if set
	S3_REGION           = "us-east-1"
	S3_ENDPOINT         = "" // for S3 compatible services
	S3_PREFIX           = "" // key prefix inside the bucket
	S3_AUTH             = "" // "key:secret", falls back to the default AWS credential chain
	THUMB_SIZE          = 960
	LOG_LEVEL           = "info"
	LOG_PRETTY          = false
)

// Load reads the optional .env file, the optional yatube.yaml config file (searched in the given
// paths and the working directory) and the environment, in increasing priority.
func Load(paths ...string) error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("yatube")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	readString(v, "TLS_DOMAINS", &TLS_DOMAINS)
	readString(v, "BIND_ADDRESS", &BIND_ADDRESS)
	readBool(v, "DEBUG_MODE", &DEBUG_MODE)
	readString(v, "MYSQL_DSN", &MYSQL_DSN)
	readString(v, "POSTGRES_DSN", &POSTGRES_DSN)
	readString(v, "SQLITE_FILE", &SQLITE_FILE)
	readString(v, "SESSION_KEY", &SESSION_KEY)
	readString(v, "SESSION_COOKIE", &SESSION_COOKIE)
	readInt(v, "SESSION_MAX_AGE", &SESSION_MAX_AGE)
	readString(v, "CORS_ORIGINS", &CORS_ORIGINS)
	readInt(v, "INDEX_CACHE_SECONDS", &INDEX_CACHE_SECONDS)
	readString(v, "REDIS_ADDRESS", &REDIS_ADDRESS)
	readString(v, "REDIS_PASSWORD", &REDIS_PASSWORD)
	readInt(v, "REDIS_DB", &REDIS_DB)
	readString(v, "MEDIA_ROOT", &MEDIA_ROOT)
	readString(v, "MEDIA_URL", &MEDIA_URL)
	readString(v, "S3_BUCKET", &S3_BUCKET)
	readString(v, "S3_REGION", &S3_REGION)
	readString(v, "S3_ENDPOINT", &S3_ENDPOINT)
	readString(v, "S3_PREFIX", &S3_PREFIX)
	readString(v, "S3_AUTH", &S3_AUTH)
	readInt(v, "THUMB_SIZE", &THUMB_SIZE)
	readString(v, "LOG_LEVEL", &LOG_LEVEL)
	readBool(v, "LOG_PRETTY", &LOG_PRETTY)
	return nil
}

func readString(v *viper.Viper, name string, value *string) {
	s := v.GetString(name)
	if s == "" {
		return
	}
	*value = s
}

func readBool(v *viper.Viper, name string, value *bool) {
	s := strings.ToLower(v.GetString(name))
	if s == "true" || s == "1" || s == "yes" || s == "on" {
		*value = true
	} else if s == "false" || s == "0" || s == "no" || s == "off" {
		*value = false
	}
}

func readInt(v *viper.Viper, name string, value *int) {
	s := v.GetString(name)
	if s == "" {
		return
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return
	}
	*value = i
}
