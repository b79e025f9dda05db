package models

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"yatube/db"
)

const mysqlDuplicateEntry = 1062

func Init() error {
	return db.Instance.AutoMigrate(
		&User{},
		&Grant{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	)
}

// IsNotFound reports whether err means the looked up record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
