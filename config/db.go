package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBDriver returns the configured driver name: mysql (default), postgres or sqlite.
func DBDriver() string {
	return strings.ToLower(GetEnv("DB_DRIVER", "mysql"))
}

// DSN builds the connection string for the configured driver.
func DSN() string {
	switch DBDriver() {
	case "postgres":
		if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
			return dsn
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			GetEnv("PG_HOST", "localhost"), GetEnv("PG_USER", "postgres"), os.Getenv("PG_PASS"),
			GetEnv("PG_DB", "vitastore"), GetEnv("PG_PORT", "5432"), GetEnv("PG_SSLMODE", "disable"))
	case "sqlite":
		return GetEnv("SQLITE_PATH", "vitastore.db")
	default:
		dsn := os.Getenv("MYSQL_DSN")
		if dsn == "" {
			user := os.Getenv("MYSQL_USER")
			pass := os.Getenv("MYSQL_PASS")
			host := os.Getenv("MYSQL_HOST")
			port := os.Getenv("MYSQL_PORT")
			db := os.Getenv("MYSQL_DB")
			if port == "" {
				port = "3306"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local", user, pass, host, port, db)
		}
		return dsn
	}
}

func dialector() gorm.Dialector {
	switch DBDriver() {
	case "postgres":
		return postgres.Open(DSN())
	case "sqlite":
		return sqlite.Open(DSN())
	default:
		return mysql.Open(DSN())
	}
}

func NewDB() (*gorm.DB, error) {
	logMode := logger.Info
	if os.Getenv("GORM_LOG") == "off" {
		logMode = logger.Silent
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use log.Logger for Printf support
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      logMode,     // Log level
			Colorful:      true,        // Enable color
		},
	)

	db, err := gorm.Open(dialector(), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}
	if DBDriver() == "sqlite" {
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
	}
	return db, nil
}
