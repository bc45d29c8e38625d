// Package db opens the cache database described by the configuration file.
package db

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/notion-mirror/internal/config"
	"github.com/hashicorp-forge/notion-mirror/pkg/database"
)

// NewDB returns a connection to the cache database. The schema is expected to
// be migrated with notion-mirror-migrate.
func NewDB(cfg *config.Database, log hclog.Logger) (*gorm.DB, error) {
	return database.Connect(database.Config{
		Driver:   cfg.Driver,
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Path:     cfg.Path,
	}, log)
}
