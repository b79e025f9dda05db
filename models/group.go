package models

import (
	"errors"
	"regexp"
	"strings"

	"yatube/db"
)

type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	CreatedAt   int64  //
	UpdatedAt   int64  //
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

var (
	ErrInvalidSlug  = errors.New("slug may contain only latin letters, digits, hyphens and underscores")
	ErrSlugTaken    = errors.New("a group with that slug already exists")
	ErrEmptyTitle   = errors.New("title is required")
	slugRe          = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)
	maxTitleLength  = 200
	errTitleTooLong = errors.New("title is too long")
)

func (g *Group) String() string {
	return g.Title
}

func GroupCreate(title, slug, description string) (g Group, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return g, ErrEmptyTitle
	}
	if len([]rune(title)) > maxTitleLength {
		return g, errTitleTooLong
	}
	if !slugRe.MatchString(slug) {
		return g, ErrInvalidSlug
	}
	g = Group{Title: title, Slug: slug, Description: description}
	if err = db.Instance.Create(&g).Error; err != nil {
		if isDuplicateKey(err) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return Group{}, ErrSlugTaken
		}
		return Group{}, err
	}
	return g, nil
}

func GroupBySlug(slug string) (g Group, err error) {
	err = db.Instance.First(&g, "slug = ?", slug).Error
	return
}

func GroupByID(id uint64) (g Group, err error) {
	err = db.Instance.First(&g, id).Error
	return
}

func GroupList() (groups []Group, err error) {
	err = db.Instance.Order("title ASC, id ASC").Find(&groups).Error
	return
}
