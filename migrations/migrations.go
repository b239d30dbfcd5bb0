// Package migrations holds the versioned SQL schema for mysql and postgres.
// sqlite databases are created with gorm AutoMigrate instead.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed mysql/*.sql postgres/*.sql
var files embed.FS

// Source opens the embedded migrations for driver (mysql or postgres).
func Source(driver string) (source.Driver, error) {
	switch driver {
	case "mysql", "postgres":
		return iofs.New(files, driver)
	default:
		return nil, fmt.Errorf("no SQL migrations for driver %q", driver)
	}
}

// New builds a migrator over db's connection pool.
func New(db *gorm.DB, driver string) (*migrate.Migrate, error) {
	src, err := Source(driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	var target database.Driver
	switch driver {
	case "mysql":
		target, err = mysql.WithInstance(sqlDB, &mysql.Config{})
	case "postgres":
		target, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("migrate %s driver: %w", driver, err)
	}
	return migrate.NewWithInstance("iofs", src, driver, target)
}

// Up applies pending migrations. ErrNoChange is not an error.
func Up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
