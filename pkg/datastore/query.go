package datastore

import (
	"context"
	"errors"

	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/search"
)

// Query reads from the cache only. Lookups that do not resolve return nil
// results rather than errors.
type Query struct {
	*deps
}

// Databases returns every cached database ordered by name.
func (q *Query) Databases(ctx context.Context) ([]cache.CachedDatabase, error) {
	return q.cache.QueryDatabases(ctx)
}

// Database returns a cached database, or nil.
func (q *Query) Database(ctx context.Context, database cache.IDOrSlug) (*cache.CachedDatabase, error) {
	return q.cache.QueryDatabase(ctx, database)
}

// Document returns a document of a database, or nil if either does not
// resolve.
func (q *Query) Document(ctx context.Context, database, document cache.IDOrSlug) (*cache.CachedDocument, error) {
	doc, err := q.cache.QueryDocumentInDatabase(ctx, database, document)
	if errors.Is(err, cache.ErrDatabaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// Id lookups are global, so make sure the document belongs to the
	// requested database.
	if doc != nil && !belongsTo(doc, database) {
		return nil, nil
	}
	return doc, nil
}

// DocumentsInDatabase returns the documents of a database. The result is nil
// if the database does not resolve and empty if it has no documents.
func (q *Query) DocumentsInDatabase(ctx context.Context, database cache.IDOrSlug) ([]cache.CachedDocument, error) {
	docs, err := q.cache.QueryDocumentsByDatabase(ctx, database)
	if errors.Is(err, cache.ErrDatabaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []cache.CachedDocument{}
	}
	return docs, nil
}

// Search runs a full-text query against the search index.
func (q *Query) Search(ctx context.Context, sq *search.Query) (*search.Result, error) {
	if q.searchIndex == nil {
		return nil, ErrSearchDisabled
	}
	return q.searchIndex.Search(ctx, sq)
}

func belongsTo(doc *cache.CachedDocument, database cache.IDOrSlug) bool {
	if doc.Database == nil {
		return false
	}
	if database.ID != "" {
		return doc.Database.NotionID == database.ID
	}
	return doc.Database.Slug == database.Slug
}
