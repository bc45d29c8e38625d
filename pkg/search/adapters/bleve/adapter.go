// Package bleve implements search.Index with an embedded Bleve index.
package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/notion-mirror/pkg/search"
)

// Config contains Bleve configuration.
type Config struct {
	IndexPath string // Directory holding the index (e.g., "./search-index")
}

// Adapter implements search.Index for Bleve (embedded full-text search).
type Adapter struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	logger hclog.Logger
}

var _ search.Index = (*Adapter)(nil)

// NewAdapter opens the index at cfg.IndexPath, creating it if needed.
func NewAdapter(cfg *Config, logger hclog.Logger) (*Adapter, error) {
	if cfg.IndexPath == "" {
		return nil, fmt.Errorf("bleve index path required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := os.MkdirAll(cfg.IndexPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	path := filepath.Join(cfg.IndexPath, "documents.bleve")
	idx, err := openOrCreateIndex(path, createDocumentMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to open documents index: %w", err)
	}

	return &Adapter{
		index:  idx,
		path:   path,
		logger: logger.Named("bleve"),
	}, nil
}

// openOrCreateIndex opens an existing Bleve index or creates a new one.
func openOrCreateIndex(path string, indexMapping mapping.IndexMapping) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		return bleve.New(path, indexMapping)
	}
	return idx, err
}

// createDocumentMapping creates the index mapping for documents.
func createDocumentMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = "en" // English analyzer with stemming

	// Content is searched but not returned with hits.
	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = "en"
	contentFieldMapping.Store = false

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	dateFieldMapping := bleve.NewDateTimeFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)
	docMapping.AddFieldMappingsAt("objectID", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("databaseSlug", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("slug", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("modifiedTime", dateFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Index adds or updates a document in the search index.
func (a *Adapter) Index(ctx context.Context, doc *search.Document) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.index.Index(doc.ObjectID, doc); err != nil {
		return fmt.Errorf("failed to index document %q: %w", doc.ObjectID, err)
	}
	return nil
}

// IndexBatch adds or updates multiple documents.
func (a *Adapter) IndexBatch(ctx context.Context, docs []*search.Document) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	batch := a.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ObjectID, doc); err != nil {
			return fmt.Errorf("failed to add document to batch: %w", err)
		}
	}
	return a.index.Batch(batch)
}

// Delete removes a document from the search index.
func (a *Adapter) Delete(ctx context.Context, objectID string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.index.Delete(objectID)
}

// Search performs a search query.
func (a *Adapter) Search(ctx context.Context, sq *search.Query) (*search.Result, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	startTime := time.Now()

	var q query.Query
	if sq.Query == "" {
		q = bleve.NewMatchAllQuery()
	} else {
		// Match either the title or the content.
		title := bleve.NewMatchQuery(sq.Query)
		title.SetField("title")
		title.SetBoost(2)
		content := bleve.NewMatchQuery(sq.Query)
		content.SetField("content")
		q = bleve.NewDisjunctionQuery(title, content)
	}

	if sq.DatabaseSlug != "" {
		filter := bleve.NewTermQuery(sq.DatabaseSlug)
		filter.SetField("databaseSlug")
		q = bleve.NewConjunctionQuery(q, filter)
	}

	perPage := sq.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := max(sq.Page, 0)

	searchRequest := bleve.NewSearchRequestOptions(q, perPage, page*perPage, false)
	searchRequest.Fields = []string{"*"}

	searchResult, err := a.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]search.Document, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		doc := search.Document{ObjectID: hit.ID}
		if v, ok := hit.Fields["databaseSlug"].(string); ok {
			doc.DatabaseSlug = v
		}
		if v, ok := hit.Fields["slug"].(string); ok {
			doc.Slug = v
		}
		if v, ok := hit.Fields["title"].(string); ok {
			doc.Title = v
		}
		if v, ok := hit.Fields["modifiedTime"].(string); ok {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				doc.ModifiedTime = t
			}
		}
		hits = append(hits, doc)
	}

	return &search.Result{
		Hits:           hits,
		TotalHits:      int(searchResult.Total),
		Page:           page,
		PerPage:        perPage,
		ProcessingTime: time.Since(startTime),
	}, nil
}

// Clear removes all documents from the index.
func (a *Adapter) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	if err := os.RemoveAll(a.path); err != nil {
		return fmt.Errorf("failed to remove index: %w", err)
	}

	idx, err := bleve.New(a.path, createDocumentMapping())
	if err != nil {
		return fmt.Errorf("failed to recreate index: %w", err)
	}
	a.index = idx

	a.logger.Info("cleared search index", "path", a.path)
	return nil
}

// DocCount returns the number of indexed documents.
func (a *Adapter) DocCount() (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.index.DocCount()
}

// Close closes the index.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.index.Close()
}
