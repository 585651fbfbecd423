// Package database opens the sqlite store and keeps the schema current.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backoffice/internal/auth"
	"backoffice/internal/model"
)

// Open connects to the sqlite database at dsn and migrates the schema.
// Plain file paths get their parent directory created first.
func Open(dsn string, verbose bool) (*gorm.DB, error) {
	if !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	// The pragma must reach every pooled connection, so it goes on the
	// DSN rather than a one-off Exec. Without it the cascade FKs are
	// silently ignored.
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}

	level := logger.Silent
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Todo{},
		&model.CalendarEvent{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// Seed ensures the admin and default user accounts exist. Existing
// accounts are left untouched so password changes survive restarts.
func Seed(db *gorm.DB, adminPassword, userPassword string) error {
	seeds := []struct {
		username string
		password string
		role     model.Role
	}{
		{"admin", adminPassword, model.RoleAdmin},
		{"user", userPassword, model.RoleUser},
	}

	for _, s := range seeds {
		var count int64
		if err := db.Model(&model.User{}).Where("username = ?", s.username).Count(&count).Error; err != nil {
			return fmt.Errorf("seed lookup %q: %w", s.username, err)
		}
		if count > 0 {
			continue
		}
		hash, err := auth.HashPassword(s.password)
		if err != nil {
			return err
		}
		u := model.User{Username: s.username, PasswordHash: hash, Role: s.role}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("seed create %q: %w", s.username, err)
		}
	}
	return nil
}
