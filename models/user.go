package models

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"yatube/db"
)

type User struct {
	ID        uint64  `gorm:"primaryKey"`
	CreatedAt int64   //
	UpdatedAt int64   //
	Username  string  `gorm:"type:varchar(150);uniqueIndex;not null"`
	FirstName string  `gorm:"type:varchar(150)"`
	LastName  string  `gorm:"type:varchar(150)"`
	Email     string  `gorm:"type:varchar(254)"`
	Password  string  `gorm:"type:varchar(128)"`
	Grants    []Grant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

var (
	ErrInvalidUsername = errors.New("username may contain only letters, digits and @/./+/-/_")
	ErrUsernameTaken   = errors.New("a user with that username already exists")
	ErrEmptyPassword   = errors.New("password is required")

	// PasswordCost is lowered by tests
	PasswordCost = bcrypt.DefaultCost

	usernameRe = regexp.MustCompile(`^[\w.@+-]{1,150}$`)
)

func UserCreate(username, email, plainTextPassword string) (u User, err error) {
	if !usernameRe.MatchString(username) {
		return u, ErrInvalidUsername
	}
	if plainTextPassword == "" {
		return u, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), PasswordCost)
	if err != nil {
		return u, err
	}
	u.Username = username
	u.Email = email
	u.Password = string(hash)
	if err = db.Instance.Omit(clause.Associations).Create(&u).Error; err != nil {
		if isDuplicateKey(err) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	return u, nil
}

func UserLogin(username, plainTextPassword string) (u User, success bool) {
	result := db.Instance.Preload("Grants").First(&u, "username = ?", username)
	if result.Error != nil {
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plainTextPassword)) != nil {
		return User{}, false
	}
	return u, true
}

func UserByID(id uint64) (u User, err error) {
	err = db.Instance.Preload("Grants").First(&u, id).Error
	return
}

func UserByUsername(username string) (u User, err error) {
	err = db.Instance.First(&u, "username = ?", username).Error
	return
}

// DisplayName is the full name when known, the username otherwise
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

func (u *User) String() string {
	return u.Username
}

func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != 0
}

func (u *User) GetPermissions() []int {
	permissions := []int{}
	for _, grant := range u.Grants {
		permissions = append(permissions, int(grant.Permission))
	}
	return permissions
}

func (u *User) HasPermission(required Permission) bool {
	for _, permission := range u.Grants {
		if permission.Permission == required {
			return true
		}
	}
	return false
}

func (u *User) HasPermissions(required []Permission) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}

// GrantPermission is idempotent
func (u *User) GrantPermission(p Permission) error {
	if u.HasPermission(p) {
		return nil
	}
	grant := Grant{UserID: u.ID, Permission: p}
	if err := db.Instance.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
		return err
	}
	u.Grants = append(u.Grants, grant)
	return nil
}
