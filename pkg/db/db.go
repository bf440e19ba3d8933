// Package db opens the approval store named by a DATABASE_URL.
package db

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"media-approve/internal/models"
	"media-approve/pkg/db/postgres"
	"media-approve/pkg/db/sqlite"
)

// Open accepts sqlite://path, postgres://... or a postgres key=value DSN.
func Open(url string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("empty sqlite path in %q", url)
		}
		log.WithField("path", path).Info("opening sqlite store")
		db, err = sqlite.Open(path)
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"), strings.Contains(url, "host="):
		log.Info("opening postgres store")
		db, err = postgres.Open(url)
	default:
		return nil, fmt.Errorf("unsupported database url %q", url)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Migrate creates the approval tables when they do not exist yet.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ApprovedMedia{}, &models.UserApprovalStat{})
}
