// Package testutil sets up an isolated in-memory database for package tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yatube/db"
	"yatube/models"
)

var dbCounter atomic.Int64

// SetupDB points db.Instance at a fresh migrated SQLite database for the duration of the test
func SetupDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbCounter.Add(1))
	instance, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := instance.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and free of lock errors
	sqlDB.SetMaxOpenConns(1)

	old := db.Instance
	db.Instance = instance
	models.PasswordCost = bcrypt.MinCost
	t.Cleanup(func() {
		db.Instance = old
		_ = sqlDB.Close()
	})
	if err = models.Init(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return instance
}

func CreateUser(t testing.TB, username string) models.User {
	t.Helper()
	u, err := models.UserCreate(username, username+"@example.com", "secret-"+username)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func CreateGroup(t testing.TB, title, slug string) models.Group {
	t.Helper()
	g, err := models.GroupCreate(title, slug, "Description of "+title)
	if err != nil {
		t.Fatalf("create group %s: %v", slug, err)
	}
	return g
}

// CreatePost writes a post directly, bypassing form validation
func CreatePost(t testing.TB, author models.User, text string, group *models.Group) models.Post {
	t.Helper()
	p := models.Post{AuthorID: author.ID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	if err := p.Create(db.Instance); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// SmallGIF returns a valid 1x1 GIF image
func SmallGIF(t testing.TB) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}
