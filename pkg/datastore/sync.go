package datastore

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/events"
	"github.com/hashicorp-forge/notion-mirror/pkg/search"
)

// Sync fetches objects from Notion and writes them to the cache.
type Sync struct {
	*deps
}

// Users caches every user visible to the integration.
func (s *Sync) Users(ctx context.Context) ([]cache.CachedUser, error) {
	users, err := s.connector.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching users: %w", err)
	}
	return s.cache.CacheUsers(ctx, users)
}

// Databases caches every database shared with the integration.
func (s *Sync) Databases(ctx context.Context) ([]cache.CachedDatabase, error) {
	dbs, err := s.connector.GetConnectedDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching databases: %w", err)
	}

	cached, err := s.cache.CacheDatabases(ctx, dbs)
	if err != nil {
		return nil, err
	}

	for i := range cached {
		db := &cached[i]
		s.publish(ctx, events.SyncEvent{
			EventType: events.EventTypeDatabaseSynced,
			NotionID:  db.NotionID,
			Slug:      db.Slug,
			Name:      db.Name,
		})
	}
	return cached, nil
}

// DatabaseDocuments caches the properties of every document in a database.
// Content is not fetched.
func (s *Sync) DatabaseDocuments(ctx context.Context, databaseID string) ([]cache.CachedDocument, error) {
	if err := s.ensureDatabase(ctx, databaseID); err != nil {
		return nil, err
	}

	docs, err := s.connector.GetDocumentsInDatabase(ctx, databaseID)
	if err != nil {
		return nil, fmt.Errorf("error fetching documents of database %q: %w", databaseID, err)
	}
	return s.cache.CacheDocuments(ctx, docs)
}

// DocumentContent fetches and caches the block tree of a document whose
// properties are already cached.
func (s *Sync) DocumentContent(ctx context.Context, documentID string) (*cache.CachedDocument, error) {
	content, err := s.connector.GetDocumentContent(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("error fetching content of document %q: %w", documentID, err)
	}

	doc, err := s.cache.CacheDocumentContent(ctx, documentID, content)
	if err != nil {
		return nil, err
	}

	s.indexDocument(ctx, doc)
	s.publishDocument(ctx, doc, true)
	return doc, nil
}

// Document syncs the properties of a document and then its content, but only
// when the content was edited in Notion after it was last cached.
func (s *Sync) Document(ctx context.Context, documentID string) (*cache.CachedDocument, error) {
	remote, err := s.connector.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("error fetching document %q: %w", documentID, err)
	}

	if err := s.ensureDatabase(ctx, remote.NotionDatabaseID); err != nil {
		return nil, err
	}

	doc, err := s.cache.CacheDocument(ctx, remote)
	if err != nil {
		return nil, err
	}

	if !cache.AreCachedDocumentBlocksStale(doc) {
		s.logger.Debug("document content is fresh", "document_id", documentID)
		s.publishDocument(ctx, doc, false)
		return doc, nil
	}

	return s.DocumentContent(ctx, documentID)
}

// All syncs users, databases, the documents of every database and the content
// of every stale document. Failures of single databases or documents are
// collected and returned together.
func (s *Sync) All(ctx context.Context) error {
	if _, err := s.Users(ctx); err != nil {
		return err
	}

	dbs, err := s.Databases(ctx)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, db := range dbs {
		docs, err := s.DatabaseDocuments(ctx, db.NotionID)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		for i := range docs {
			doc := &docs[i]
			if !cache.AreCachedDocumentBlocksStale(doc) {
				continue
			}
			if _, err := s.DocumentContent(ctx, doc.NotionID); err != nil {
				result = multierror.Append(result, err)
			}
		}

		s.logger.Info("synced database",
			"database_id", db.NotionID,
			"slug", db.Slug,
			"documents", len(docs),
		)
	}

	return result.ErrorOrNil()
}

// Reindex rebuilds the search index from every cached document with content.
func (s *Sync) Reindex(ctx context.Context) (int, error) {
	if s.searchIndex == nil {
		return 0, ErrSearchDisabled
	}

	docs, err := s.cache.QueryDocuments(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.searchIndex.Clear(ctx); err != nil {
		return 0, fmt.Errorf("error clearing search index: %w", err)
	}

	batch := make([]*search.Document, 0, len(docs))
	for i := range docs {
		if docs[i].BlocksLastSyncedAt == nil {
			continue
		}
		batch = append(batch, s.searchDocument(&docs[i]))
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := s.searchIndex.IndexBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("error indexing documents: %w", err)
	}
	return len(batch), nil
}

// ensureDatabase caches a database that has never been synced so that its
// documents can be cached. An already cached database is left alone because
// a single database fetch carries no schema.
func (s *Sync) ensureDatabase(ctx context.Context, databaseID string) error {
	db, err := s.cache.QueryDatabase(ctx, cache.ByID(databaseID))
	if err != nil {
		return err
	}
	if db != nil {
		return nil
	}

	remote, err := s.connector.GetDatabase(ctx, databaseID)
	if err != nil {
		return fmt.Errorf("error fetching database %q: %w", databaseID, err)
	}
	if _, err := s.cache.CacheDatabase(ctx, remote); err != nil {
		return err
	}
	return nil
}

func (s *Sync) searchDocument(doc *cache.CachedDocument) *search.Document {
	sd := &search.Document{
		ObjectID:     doc.NotionID,
		Slug:         doc.Slug,
		Title:        doc.Name,
		Content:      s.transformer.Transform(doc.Blocks.Data),
		ModifiedTime: doc.NotionLastEditedTime,
	}
	if doc.Database != nil {
		sd.DatabaseSlug = doc.Database.Slug
	}
	return sd
}

// indexDocument adds a document to the search index. The cache stays authoritative,
// so failures are logged and a later reindex repairs the index.
func (s *Sync) indexDocument(ctx context.Context, doc *cache.CachedDocument) {
	if s.searchIndex == nil {
		return
	}
	if err := s.searchIndex.Index(ctx, s.searchDocument(doc)); err != nil {
		s.logger.Error("error indexing document",
			"document_id", doc.NotionID,
			"error", err,
		)
	}
}

func (s *Sync) publishDocument(ctx context.Context, doc *cache.CachedDocument, contentSynced bool) {
	event := events.SyncEvent{
		EventType:     events.EventTypeDocumentSynced,
		NotionID:      doc.NotionID,
		Slug:          doc.Slug,
		Name:          doc.Name,
		ContentSynced: contentSynced,
	}
	if doc.Database != nil {
		event.DatabaseID = doc.Database.NotionID
		event.DatabaseSlug = doc.Database.Slug
	}
	s.publish(ctx, event)
}

func (s *Sync) publish(ctx context.Context, event events.SyncEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("error publishing sync event",
			"event_type", event.EventType,
			"notion_id", event.NotionID,
			"error", err,
		)
	}
}
