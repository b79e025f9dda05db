package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Follow is a subscription of User to the posts of Author
type Follow struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64  //
	UserID    uint64 `gorm:"not null;index:uniq_user_author,unique"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID  uint64 `gorm:"not null;index:uniq_user_author,unique;index"`
	Author    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// FollowCreate adds the edge unless it already exists
func FollowCreate(tx *gorm.DB, userID, authorID uint64) (created bool, err error) {
	f := Follow{UserID: userID, AuthorID: authorID}
	result := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&f)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FollowDelete removes the edge, a missing edge is not an error
func FollowDelete(tx *gorm.DB, userID, authorID uint64) error {
	return tx.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&Follow{}).Error
}

func IsFollowing(tx *gorm.DB, userID, authorID uint64) (bool, error) {
	var count int64
	err := tx.Model(&Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// FollowCount returns how many users follow userID and how many authors userID follows
func FollowCount(tx *gorm.DB, userID uint64) (followers, following int64, err error) {
	if err = tx.Model(&Follow{}).Where("author_id = ?", userID).Count(&followers).Error; err != nil {
		return
	}
	err = tx.Model(&Follow{}).Where("user_id = ?", userID).Count(&following).Error
	return
}

// FollowedAuthors is a subquery selecting the ids of the authors userID follows
func FollowedAuthors(tx *gorm.DB, userID uint64) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&Follow{}).
		Select("author_id").
		Where("user_id = ?", userID)
}
