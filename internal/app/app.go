// Package app builds the object graph shared by every command from the
// configuration file.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/notion-mirror/internal/config"
	"github.com/hashicorp-forge/notion-mirror/internal/db"
	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/connector"
	"github.com/hashicorp-forge/notion-mirror/pkg/datastore"
	"github.com/hashicorp-forge/notion-mirror/pkg/events"
	"github.com/hashicorp-forge/notion-mirror/pkg/filestore"
	"github.com/hashicorp-forge/notion-mirror/pkg/kafka"
	"github.com/hashicorp-forge/notion-mirror/pkg/search"
	bleveadapter "github.com/hashicorp-forge/notion-mirror/pkg/search/adapters/bleve"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Datastore *datastore.Datastore

	// FileHandler serves the local file store. It is nil for other stores.
	FileHandler http.Handler

	Logger hclog.Logger

	index     search.Index
	publisher events.Publisher
}

// New connects to the database and wires the connector, cache, file store,
// search index and event publisher into a Datastore.
func New(ctx context.Context, cfg *config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	a := &App{Config: cfg, Logger: logger}

	conn, err := connector.New(&connector.Config{
		APIKey:        cfg.Notion.APIKey,
		BaseURL:       cfg.Notion.BaseURL,
		NotionVersion: cfg.Notion.NotionVersion,
		Timeout:       config.Duration(cfg.Notion.Timeout, 30*time.Second),
		MaxRetries:    cfg.Notion.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	a.DB, err = db.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	backend, err := a.newFileBackend(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("error initializing file store: %w", err)
	}
	files := filestore.New(backend, &filestore.Config{
		DownloadTimeout: config.Duration(cfg.FileStore.DownloadTimeout, 0),
		MaxFileSizeMB:   cfg.FileStore.MaxFileSizeMB,
	}, logger)

	if cfg.Search != nil {
		idx, err := bleveadapter.NewAdapter(&bleveadapter.Config{
			IndexPath: cfg.Search.IndexPath,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("error initializing search index: %w", err)
		}
		a.index = idx
	}

	if kafka.Enabled(cfg) {
		pub, err := events.New(events.Config{
			Brokers: kafka.GetBrokers(cfg),
			Topic:   kafka.GetSyncTopic(cfg),
			Logger:  logger,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("error initializing event publisher: %w", err)
		}
		a.publisher = pub
	}

	dsCfg := datastore.Config{
		Connector: conn,
		Cache:     cache.New(a.DB, logger),
		FileStore: files,
		Search:    a.index,
		Events:    a.publisher,
		Logger:    logger,
	}

	a.Datastore, err = datastore.New(dsCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) newFileBackend(ctx context.Context) (filestore.Backend, error) {
	fsCfg := a.Config.FileStore

	switch fsCfg.Type {
	case "s3":
		s3 := fsCfg.S3
		return filestore.NewS3Backend(ctx, &filestore.S3Config{
			Endpoint:           s3.Endpoint,
			Region:             s3.Region,
			Bucket:             s3.Bucket,
			Prefix:             s3.Prefix,
			AccessKey:          s3.AccessKey,
			SecretKey:          s3.SecretKey,
			PublicBaseURL:      s3.PublicBaseURL,
			InsecureSkipVerify: s3.InsecureSkipVerify,
		}, a.Logger)

	case "local":
		local, err := filestore.NewLocalBackend(afero.NewOsFs(), &filestore.LocalConfig{
			Path:    fsCfg.Local.Path,
			BaseURL: fsCfg.Local.BaseURL,
		}, a.Logger)
		if err != nil {
			return nil, err
		}
		a.FileHandler = local.Handler()
		return local, nil
	}

	return nil, fmt.Errorf("unsupported file store type: %s", fsCfg.Type)
}

// Close releases the database, search index and Kafka client.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.Logger.Error("error closing search index", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
