package db

import (
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Open picks the first configured backend: MySQL, then PostgreSQL, then the SQLite file.
func Open(mysqlDSN, postgresDSN, sqliteFile string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case mysqlDSN != "":
		dsn, err := normalizeMySQLDSN(mysqlDSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	case postgresDSN != "":
		dialector = postgres.New(postgres.Config{
			DSN:                  postgresDSN,
			PreferSimpleProtocol: true,
		})
	default:
		dialector = sqlite.Open(sqliteDSN(sqliteFile))
	}
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Init(mysqlDSN, postgresDSN, sqliteFile string, debug bool) {
	db, err := Open(mysqlDSN, postgresDSN, sqliteFile, debug)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}

// normalizeMySQLDSN makes sure times are parsed and text is stored as utf8mb4
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

// sqliteDSN turns on foreign key enforcement, SQLite leaves it off by default
func sqliteDSN(file string) string {
	if strings.Contains(file, "_foreign_keys=") || strings.Contains(file, "_fk=") {
		return file
	}
	sep := "?"
	if strings.Contains(file, "?") {
		sep = "&"
	}
	return file + sep + "_foreign_keys=1"
}
