package cache

import "errors"

var (
	// ErrDocumentNotFound is returned when content is cached for a document
	// whose properties were never cached.
	ErrDocumentNotFound = errors.New("document not found in cache")

	// ErrDatabaseNotFound is returned when a database id or slug does not
	// resolve to a cached database.
	ErrDatabaseNotFound = errors.New("database not found in cache")
)
