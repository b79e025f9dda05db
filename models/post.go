package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/db"
)

type Post struct {
	ID        uint64  `gorm:"primaryKey"`
	CreatedAt int64   `gorm:"index"` // publication date, never updated
	UpdatedAt int64   //
	AuthorID  uint64  `gorm:"not null;index"`
	Author    User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GroupID   *uint64 `gorm:"index"`
	Group     *Group  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Text      string  `gorm:"type:text;not null"`
	Image     string  `gorm:"type:varchar(255)"` // storage path, "posts/<name>"
	Thumb     string  `gorm:"type:varchar(255)"` // storage path of the resized copy
}

// NewestFirst is the ordering of every post list
const NewestFirst = "posts.created_at DESC, posts.id DESC"

func (p *Post) String() string {
	return p.Text
}

func PostByID(id uint64) (p Post, err error) {
	err = db.Instance.Preload("Author").Preload("Group").First(&p, id).Error
	return
}

// Create inserts the post with the author, group and image fields already set
func (p *Post) Create(tx *gorm.DB) error {
	return tx.Omit(clause.Associations).Create(p).Error
}

// Save writes back the editable fields only, so the author and publication date never change
func (p *Post) Save(tx *gorm.DB) error {
	return tx.Model(p).
		Select("Text", "GroupID", "Image", "Thumb", "UpdatedAt").
		Omit(clause.Associations).
		Updates(p).Error
}

func PostCountByAuthor(tx *gorm.DB, authorID uint64) (count int64, err error) {
	err = tx.Model(&Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return
}
