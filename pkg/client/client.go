// Package client projects cached objects into the shapes served to API
// consumers.
package client

import (
	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/connector"
	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// Document is the public form of a cached document. Properties are keyed by
// the lower camel case form of their display name, numbered from 2 when two
// names share a key, and blocks carry no ids.
type Document struct {
	ID         string         `json:"id"`
	Slug       string         `json:"slug"`
	Name       string         `json:"name"`
	Cover      *notion.File   `json:"cover,omitempty"`
	Icon       *notion.Icon   `json:"icon,omitempty"`
	Properties map[string]any `json:"properties"`
	Blocks     []notion.Block `json:"blocks"`
}

// Database is the public form of a cached database.
type Database struct {
	ID             string                  `json:"id"`
	Slug           string                  `json:"slug"`
	Name           string                  `json:"name"`
	Cover          *notion.File            `json:"cover,omitempty"`
	Icon           *notion.Icon            `json:"icon,omitempty"`
	PropertySchema []notion.PropertySchema `json:"propertySchema"`
}

// NewDocument projects a cached document.
func NewDocument(doc *cache.CachedDocument) Document {
	props := make(map[string]any, len(doc.Properties.Data))
	keys := connector.KeyAllocator{}
	for _, p := range doc.Properties.Data {
		props[keys.Key(p.Name)] = p.Value
	}

	blocks := notion.StripIDs(doc.Blocks.Data)
	if blocks == nil {
		blocks = []notion.Block{}
	}

	return Document{
		ID:         doc.NotionID,
		Slug:       doc.Slug,
		Name:       doc.Name,
		Cover:      doc.Cover.Data,
		Icon:       doc.Icon.Data,
		Properties: props,
		Blocks:     blocks,
	}
}

// NewDocuments projects each document in turn.
func NewDocuments(docs []cache.CachedDocument) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = NewDocument(&docs[i])
	}
	return out
}

// NewDatabase projects a cached database.
func NewDatabase(db *cache.CachedDatabase) Database {
	schema := db.PropertySchema.Data
	if schema == nil {
		schema = []notion.PropertySchema{}
	}
	return Database{
		ID:             db.NotionID,
		Slug:           db.Slug,
		Name:           db.Name,
		Cover:          db.Cover.Data,
		Icon:           db.Icon.Data,
		PropertySchema: schema,
	}
}
