package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/notion-mirror/internal/config"
	"github.com/hashicorp-forge/notion-mirror/pkg/datastore"
)

// Server contains the server configuration.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// DB is the cache database. It is used for health checks only; reads go
	// through Datastore.
	DB *gorm.DB

	// Datastore serves cached databases, documents and search results.
	Datastore *datastore.Datastore

	// Logger is the logger for the server.
	Logger hclog.Logger
}
