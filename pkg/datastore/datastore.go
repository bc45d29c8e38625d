// Package datastore ties the Notion connector to the cache. It is the only
// package that calls both, and it owns the conditional sync policy.
package datastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/connector"
	"github.com/hashicorp-forge/notion-mirror/pkg/events"
	"github.com/hashicorp-forge/notion-mirror/pkg/filestore"
	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
	"github.com/hashicorp-forge/notion-mirror/pkg/search"
)

// ErrSearchDisabled is returned by search operations when no index is
// configured.
var ErrSearchDisabled = errors.New("search is not configured")

// Config holds the collaborators of a Datastore.
type Config struct {
	Connector *connector.Connector
	Cache     *cache.Cache
	FileStore *filestore.Store

	// Search and Events are optional.
	Search search.Index
	Events events.Publisher

	Logger hclog.Logger
}

// Datastore groups sync and query operations.
type Datastore struct {
	Sync  *Sync
	Query *Query
}

type deps struct {
	connector   *connector.Connector
	cache       *cache.Cache
	files       *filestore.Store
	searchIndex search.Index
	publisher   events.Publisher
	transformer *notion.Transformer
	logger      hclog.Logger
}

// New creates a Datastore and binds the connector's file cache handler, so
// the connector must not be used for fetching before New returns.
func New(cfg Config) (*Datastore, error) {
	if cfg.Connector == nil {
		return nil, fmt.Errorf("connector is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.FileStore == nil {
		return nil, fmt.Errorf("file store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	logger := cfg.Logger.Named("datastore")

	d := &deps{
		connector:   cfg.Connector,
		cache:       cfg.Cache,
		files:       cfg.FileStore,
		searchIndex: cfg.Search,
		publisher:   cfg.Events,
		transformer: notion.NewPlainTextTransformer(logger),
		logger:      logger,
	}
	cfg.Connector.SetFileCacheHandler(d.cacheFile)

	return &Datastore{
		Sync:  &Sync{d},
		Query: &Query{d},
	}, nil
}

// cacheFile returns the stored URL of a remote file, copying it into the file
// store the first time it is seen.
func (d *deps) cacheFile(ctx context.Context, remoteURL string) (string, error) {
	urlKey, err := filestore.URLKey(remoteURL)
	if err != nil {
		return "", err
	}

	rec, err := d.cache.IsFileCached(ctx, urlKey)
	if err != nil {
		return "", err
	}
	if rec != nil {
		return rec.URL, nil
	}

	data, err := d.files.CacheFile(ctx, urlKey, remoteURL)
	if err != nil {
		return "", err
	}

	rec, err = d.cache.RecordCachedFile(ctx, cache.CachedFile{
		URLKey:       data.URLKey,
		URL:          data.URL,
		FileType:     data.FileType,
		Name:         data.Name,
		FileSizeInKB: data.FileSizeInKB,
	})
	if err != nil {
		return "", err
	}
	return rec.URL, nil
}
