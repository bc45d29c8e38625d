package cache

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// IDOrSlug identifies a database or document either by Notion id or by slug.
type IDOrSlug struct {
	ID   string
	Slug string
}

// ByID identifies an object by its Notion id.
func ByID(id string) IDOrSlug {
	return IDOrSlug{ID: id}
}

// BySlug identifies an object by its slug.
func BySlug(slug string) IDOrSlug {
	return IDOrSlug{Slug: slug}
}

func (k IDOrSlug) String() string {
	if k.ID != "" {
		return "id:" + k.ID
	}
	return "slug:" + k.Slug
}

func (k IDOrSlug) scope(tx *gorm.DB) *gorm.DB {
	if k.ID != "" {
		return tx.Where("notion_id = ?", k.ID)
	}
	return tx.Where("slug = ?", k.Slug)
}

// QueryDatabase returns a cached database, or nil if there is none.
func (c *Cache) QueryDatabase(ctx context.Context, key IDOrSlug) (*CachedDatabase, error) {
	var db CachedDatabase
	err := key.scope(c.db.WithContext(ctx)).Order("id ASC").First(&db).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying database %s: %w", key, err)
	}
	return &db, nil
}

// QueryDatabases returns every cached database ordered by name.
func (c *Cache) QueryDatabases(ctx context.Context) ([]CachedDatabase, error) {
	var dbs []CachedDatabase
	if err := c.db.WithContext(ctx).
		Order("name ASC").
		Find(&dbs).
		Error; err != nil {
		return nil, fmt.Errorf("error querying databases: %w", err)
	}
	return dbs, nil
}

// QueryDocumentsByDatabase returns the documents of a database ordered by
// name. It returns ErrDatabaseNotFound if the database is not cached.
func (c *Cache) QueryDocumentsByDatabase(ctx context.Context, database IDOrSlug) ([]CachedDocument, error) {
	db, err := c.QueryDatabase(ctx, database)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("database %s: %w", database, ErrDatabaseNotFound)
	}

	var docs []CachedDocument
	if err := c.db.WithContext(ctx).
		Where("database_id = ?", db.ID).
		Order("name ASC").
		Find(&docs).
		Error; err != nil {
		return nil, fmt.Errorf("error querying documents of database %s: %w", database, err)
	}
	for i := range docs {
		docs[i].Database = db
	}
	return docs, nil
}

// QueryDocumentInDatabase returns a cached document with its database, or nil
// if there is none. A document id is looked up globally. A document slug is
// looked up within the database, which must be cached or ErrDatabaseNotFound
// is returned.
func (c *Cache) QueryDocumentInDatabase(ctx context.Context, database, document IDOrSlug) (*CachedDocument, error) {
	tx := c.db.WithContext(ctx).Preload("Database")

	if document.ID != "" {
		return firstDocument(tx.Where("notion_id = ?", document.ID), document)
	}

	db, err := c.QueryDatabase(ctx, database)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("database %s: %w", database, ErrDatabaseNotFound)
	}

	return firstDocument(
		tx.Where("database_id = ? AND slug = ?", db.ID, document.Slug), document)
}

// QueryDocument returns a cached document by Notion id, or nil if there is
// none.
func (c *Cache) QueryDocument(ctx context.Context, id string) (*CachedDocument, error) {
	return firstDocument(
		c.db.WithContext(ctx).Preload("Database").Where("notion_id = ?", id), ByID(id))
}

// QueryDocuments returns every cached document with its database.
func (c *Cache) QueryDocuments(ctx context.Context) ([]CachedDocument, error) {
	var docs []CachedDocument
	if err := c.db.WithContext(ctx).
		Preload("Database").
		Order("id ASC").
		Find(&docs).
		Error; err != nil {
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	return docs, nil
}

func firstDocument(tx *gorm.DB, key IDOrSlug) (*CachedDocument, error) {
	var doc CachedDocument
	err := tx.First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying document %s: %w", key, err)
	}
	return &doc, nil
}
