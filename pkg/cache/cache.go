// Package cache persists mirrored Notion objects with gorm and answers id and
// slug queries over them. It never calls the Notion API.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hashicorp-forge/notion-mirror/pkg/connector"
	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// Cache is the local store of mirrored objects.
type Cache struct {
	db     *gorm.DB
	logger hclog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// New returns a Cache backed by db. The schema must already exist, either
// through migrations or AutoMigrate with ModelsToAutoMigrate.
func New(db *gorm.DB, logger hclog.Logger) *Cache {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cache{
		db:     db,
		logger: logger.Named("cache"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CacheDatabase inserts or updates a database by Notion id. A slug already
// held by another database is suffixed with the compressed Notion id.
func (c *Cache) CacheDatabase(ctx context.Context, db notion.Database) (*CachedDatabase, error) {
	rec := &CachedDatabase{
		NotionID:             db.NotionID,
		Slug:                 db.Slug,
		Name:                 db.Name,
		URL:                  db.URL,
		Cover:                NewJSON(db.Cover),
		Icon:                 NewJSON(db.Icon),
		PropertySchema:       NewJSON(db.PropertySchema),
		NotionCreatedTime:    db.CreatedTime,
		NotionLastEditedTime: db.LastEditedTime,
		LastSyncedAt:         c.now(),
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&CachedDatabase{}).
			Where("slug = ? AND notion_id <> ?", rec.Slug, rec.NotionID).
			Count(&taken).
			Error; err != nil {
			return err
		}
		if taken > 0 {
			rec.Slug = rec.Slug + "-" + connector.CompressObjectID(rec.NotionID)
			c.logger.Warn("database slug already in use, suffixing with compressed id",
				"database_id", rec.NotionID, "requested_slug", db.Slug, "slug", rec.Slug)
		}

		if err := tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "notion_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"slug", "name", "url", "cover", "icon", "property_schema",
					"notion_created_time", "notion_last_edited_time",
					"last_synced_at", "updated_at",
				}),
			}).
			Create(rec).
			Error; err != nil {
			return err
		}
		return tx.Where("notion_id = ?", db.NotionID).First(rec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("error caching database %q: %w", db.NotionID, err)
	}

	c.logger.Debug("cached database", "database_id", db.NotionID, "slug", rec.Slug)
	return rec, nil
}

// CacheDatabases caches each database in turn.
func (c *Cache) CacheDatabases(ctx context.Context, dbs []notion.Database) ([]CachedDatabase, error) {
	out := make([]CachedDatabase, 0, len(dbs))
	for _, db := range dbs {
		rec, err := c.CacheDatabase(ctx, db)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// CacheDocument inserts or updates a document's properties by Notion id. The
// document's database must already be cached. People properties are resolved
// against the users cached at this point. Cached content is left untouched.
func (c *Cache) CacheDocument(ctx context.Context, doc notion.Document) (*CachedDocument, error) {
	tx := c.db.WithContext(ctx)

	var parent CachedDatabase
	if err := tx.Where("notion_id = ?", doc.NotionDatabaseID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("error caching document %q: %w", doc.NotionID, ErrDatabaseNotFound)
		}
		return nil, fmt.Errorf("error finding database of document %q: %w", doc.NotionID, err)
	}

	props, err := c.resolvePeople(tx, doc.Properties)
	if err != nil {
		return nil, err
	}

	rec := &CachedDocument{
		NotionID:               doc.NotionID,
		DatabaseID:             parent.ID,
		Slug:                   doc.Slug,
		Name:                   doc.Name,
		URL:                    doc.URL,
		Cover:                  NewJSON(doc.Cover),
		Icon:                   NewJSON(doc.Icon),
		Properties:             NewJSON(props),
		NotionCreatedTime:      doc.CreatedTime,
		NotionLastEditedTime:   doc.LastEditedTime,
		PropertiesLastSyncedAt: c.now(),
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	err = tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "notion_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"database_id", "slug", "name", "url", "cover", "icon", "properties",
					"notion_created_time", "notion_last_edited_time",
					"properties_last_synced_at", "updated_at",
				}),
			}).
			Create(rec).
			Error; err != nil {
			return err
		}
		return tx.Where("notion_id = ?", doc.NotionID).First(rec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("error caching document %q: %w", doc.NotionID, err)
	}
	rec.Database = &parent

	c.logger.Debug("cached document",
		"document_id", doc.NotionID, "database_id", doc.NotionDatabaseID, "slug", doc.Slug)
	return rec, nil
}

// CacheDocuments caches each document in turn.
func (c *Cache) CacheDocuments(ctx context.Context, docs []notion.Document) ([]CachedDocument, error) {
	out := make([]CachedDocument, 0, len(docs))
	for _, doc := range docs {
		rec, err := c.CacheDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// resolvePeople copies the name, avatar and bot flag of cached users into
// people property values. Unknown users keep only their id.
func (c *Cache) resolvePeople(tx *gorm.DB, props []notion.Property) ([]notion.Property, error) {
	var ids []string
	for _, p := range props {
		if people, ok := p.Value.([]notion.Person); ok {
			for _, person := range people {
				ids = append(ids, person.NotionID)
			}
		}
	}
	if len(ids) == 0 {
		return props, nil
	}

	var users []CachedUser
	if err := tx.Where("notion_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error finding users: %w", err)
	}
	byID := make(map[string]CachedUser, len(users))
	for _, u := range users {
		byID[u.NotionID] = u
	}

	out := make([]notion.Property, len(props))
	for i, p := range props {
		out[i] = p
		people, ok := p.Value.([]notion.Person)
		if !ok {
			continue
		}

		resolved := make([]notion.Person, len(people))
		for j, person := range people {
			resolved[j] = notion.Person{NotionID: person.NotionID}
			if u, ok := byID[person.NotionID]; ok {
				resolved[j].Name = u.Name
				resolved[j].Avatar = u.Avatar.Data
				resolved[j].IsBot = u.IsBot
			} else {
				c.logger.Debug("person is not a cached user", "user_id", person.NotionID)
			}
		}
		out[i].Value = resolved
	}
	return out, nil
}

// CacheDocumentContent replaces the block tree and plain text of a cached
// document. It returns ErrDocumentNotFound if the document is not cached.
func (c *Cache) CacheDocumentContent(ctx context.Context, documentID string, content notion.DocumentContent) (*CachedDocument, error) {
	blocks := content.Blocks
	if blocks == nil {
		blocks = []notion.Block{}
	}
	now := c.now()

	var rec CachedDocument
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&CachedDocument{}).
			Where("notion_id = ?", documentID).
			Updates(map[string]any{
				"blocks":                NewJSON(blocks),
				"plain_text":            content.PlainText,
				"blocks_last_synced_at": now,
				"updated_at":            now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDocumentNotFound
		}
		return tx.Preload("Database").Where("notion_id = ?", documentID).First(&rec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("error caching content of document %q: %w", documentID, err)
	}

	c.logger.Debug("cached document content", "document_id", documentID, "blocks", len(blocks))
	return &rec, nil
}

// AreCachedDocumentBlocksStale reports whether the content of a cached
// document needs to be fetched: it was never fetched, or the document was
// edited in Notion after it was last fetched.
func AreCachedDocumentBlocksStale(doc *CachedDocument) bool {
	if doc.BlocksLastSyncedAt == nil {
		return true
	}
	return doc.NotionLastEditedTime.After(*doc.BlocksLastSyncedAt)
}

// CacheUser inserts or updates a user by Notion id.
func (c *Cache) CacheUser(ctx context.Context, user notion.User) (*CachedUser, error) {
	rec := &CachedUser{
		NotionID:     user.NotionID,
		Name:         user.Name,
		Avatar:       NewJSON(user.Avatar),
		IsBot:        user.IsBot,
		LastSyncedAt: c.now(),
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "notion_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "avatar", "is_bot", "last_synced_at", "updated_at",
				}),
			}).
			Create(rec).
			Error; err != nil {
			return err
		}
		return tx.Where("notion_id = ?", user.NotionID).First(rec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("error caching user %q: %w", user.NotionID, err)
	}
	return rec, nil
}

// CacheUsers caches each user in turn.
func (c *Cache) CacheUsers(ctx context.Context, users []notion.User) ([]CachedUser, error) {
	out := make([]CachedUser, 0, len(users))
	for _, u := range users {
		rec, err := c.CacheUser(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// RecordCachedFile records a file copied into the file store. If the URL key
// is already recorded the existing record is returned unchanged.
func (c *Cache) RecordCachedFile(ctx context.Context, f CachedFile) (*CachedFile, error) {
	if f.LastSyncedAt.IsZero() {
		f.LastSyncedAt = c.now()
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	var rec CachedFile
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "url_key"}},
				DoNothing: true,
			}).
			Create(&f).
			Error; err != nil {
			return err
		}
		return tx.Where("url_key = ?", f.URLKey).First(&rec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("error recording cached file: %w", err)
	}
	return &rec, nil
}

// IsFileCached returns the record for a URL key, or nil if the file has not
// been cached.
func (c *Cache) IsFileCached(ctx context.Context, urlKey string) (*CachedFile, error) {
	var rec CachedFile
	err := c.db.WithContext(ctx).Where("url_key = ?", urlKey).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up cached file: %w", err)
	}
	return &rec, nil
}
