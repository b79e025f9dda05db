package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Comment struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"index"`
	PostID    uint64 `gorm:"not null;index"`
	Post      Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID  uint64 `gorm:"not null;index"`
	Author    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Text      string `gorm:"type:text;not null"`
}

func (c *Comment) String() string {
	return c.Text
}

func (c *Comment) Create(tx *gorm.DB) error {
	return tx.Omit(clause.Associations).Create(c).Error
}

// CommentsForPost returns the comments in the order they were written
func CommentsForPost(tx *gorm.DB, postID uint64) (comments []Comment, err error) {
	err = tx.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return
}
