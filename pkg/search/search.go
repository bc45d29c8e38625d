// Package search defines full-text search over mirrored documents.
package search

import (
	"context"
	"time"
)

// Document is the searchable form of a cached document.
type Document struct {
	// ObjectID is the Notion id of the document.
	ObjectID     string    `json:"objectID"`
	DatabaseSlug string    `json:"databaseSlug"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// Query is a full-text search request.
type Query struct {
	Query string

	// DatabaseSlug restricts results to one database when set.
	DatabaseSlug string

	Page    int
	PerPage int
}

// Result is a page of search hits. Hits do not carry Content.
type Result struct {
	Hits           []Document
	TotalHits      int
	Page           int
	PerPage        int
	ProcessingTime time.Duration
}

// Index is a full-text index of documents.
type Index interface {
	Index(ctx context.Context, doc *Document) error
	IndexBatch(ctx context.Context, docs []*Document) error
	Delete(ctx context.Context, objectID string) error
	Search(ctx context.Context, q *Query) (*Result, error)
	Clear(ctx context.Context) error
	Close() error
}
