package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/connector"
	"github.com/hashicorp-forge/notion-mirror/pkg/events"
	"github.com/hashicorp-forge/notion-mirror/pkg/filestore"
	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
	"github.com/hashicorp-forge/notion-mirror/pkg/search"
)

const (
	testDatabaseID = "db-1"
	testDocumentID = "5c6a2821-6bb1-4a7e-b6e1-c50111515c3d"
	testDocSlug    = "faq6wzib-my-first-post"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// workspace is a fake Notion workspace with one database holding one page.
type workspace struct {
	mu             sync.Mutex
	lastEditedTime string
	requests       map[string]int
	fileRequests   int
	fileServer     *httptest.Server
}

func (ws *workspace) count(key string) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.requests[key]
}

func (ws *workspace) setLastEdited(ts string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.lastEditedTime = ts
}

func rt(s string) []map[string]any {
	return []map[string]any{{
		"type":        "text",
		"plain_text":  s,
		"text":        map[string]any{"content": s},
		"annotations": map[string]any{"color": "default"},
	}}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (ws *workspace) page() map[string]any {
	return map[string]any{
		"object":           "page",
		"id":               testDocumentID,
		"url":              "https://www.notion.so/" + testDocumentID,
		"created_time":     "2024-01-02T03:04:05.000Z",
		"last_edited_time": ws.lastEditedTime,
		"parent":           map[string]any{"type": "database_id", "database_id": testDatabaseID},
		"cover": map[string]any{
			"type":     "file",
			"file":     map[string]any{"url": ws.fileServer.URL + "/cover.png?X-Amz-Signature=abc"},
		},
		"properties": map[string]any{
			"Name": map[string]any{"id": "title", "type": "title", "title": rt("My First Post")},
			"Owner": map[string]any{"id": "p1", "type": "people", "people": []map[string]any{
				{"object": "user", "id": "user-1"},
			}},
		},
	}
}

func (ws *workspace) database() map[string]any {
	return map[string]any{
		"object": "database",
		"id":     testDatabaseID,
		"title":  rt("Engineering Blog"),
		"properties": map[string]any{
			"Name":  map[string]any{"id": "title", "name": "Name", "type": "title"},
			"Owner": map[string]any{"id": "p1", "name": "Owner", "type": "people"},
		},
	}
}

func block(id, typ, text string) map[string]any {
	return map[string]any{
		"object":       "block",
		"id":           id,
		"type":         typ,
		"has_children": false,
		typ:            map[string]any{"rich_text": rt(text), "color": "default"},
	}
}

func newWorkspace(t *testing.T) (*workspace, *httptest.Server) {
	t.Helper()

	ws := &workspace{
		lastEditedTime: "2024-02-03T04:05:06.000Z",
		requests:       map[string]int{},
	}

	ws.fileServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.mu.Lock()
		ws.fileRequests++
		ws.mu.Unlock()
		_, _ = w.Write(pngBytes)
	}))
	t.Cleanup(ws.fileServer.Close)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		ws.mu.Lock()
		ws.requests[key]++
		ws.mu.Unlock()

		switch key {
		case "POST /v1/search":
			writeJSON(w, map[string]any{
				"object": "list", "has_more": false,
				"results": []map[string]any{ws.database()},
			})
		case "GET /v1/databases/" + testDatabaseID:
			writeJSON(w, ws.database())
		case "POST /v1/databases/" + testDatabaseID + "/query":
			ws.mu.Lock()
			p := ws.page()
			ws.mu.Unlock()
			writeJSON(w, map[string]any{
				"object": "list", "has_more": false,
				"results": []map[string]any{p},
			})
		case "GET /v1/pages/" + testDocumentID:
			ws.mu.Lock()
			p := ws.page()
			ws.mu.Unlock()
			writeJSON(w, p)
		case "GET /v1/blocks/" + testDocumentID + "/children":
			writeJSON(w, map[string]any{
				"object": "list", "has_more": false,
				"results": []map[string]any{
					block("h1", "heading_1", "Introduction"),
					block("b1", "bulleted_list_item", "gophers"),
					block("b2", "bulleted_list_item", "channels"),
				},
			})
		case "GET /v1/users":
			writeJSON(w, map[string]any{
				"object": "list", "has_more": false,
				"results": []map[string]any{{
					"object": "user", "id": "user-1", "type": "person", "name": "Ada",
				}},
			})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	return ws, srv
}

type recordingIndex struct {
	mu      sync.Mutex
	docs    map[string]*search.Document
	cleared int
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{docs: map[string]*search.Document{}}
}

func (r *recordingIndex) Index(_ context.Context, doc *search.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ObjectID] = doc
	return nil
}

func (r *recordingIndex) IndexBatch(ctx context.Context, docs []*search.Document) error {
	for _, d := range docs {
		_ = r.Index(ctx, d)
	}
	return nil
}

func (r *recordingIndex) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *recordingIndex) Search(_ context.Context, q *search.Query) (*search.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := &search.Result{Page: q.Page, PerPage: q.PerPage}
	for _, d := range r.docs {
		if strings.Contains(d.Content, q.Query) {
			res.Hits = append(res.Hits, *d)
		}
	}
	res.TotalHits = len(res.Hits)
	return res, nil
}

func (r *recordingIndex) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = map[string]*search.Document{}
	r.cleared++
	return nil
}

func (r *recordingIndex) Close() error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SyncEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.SyncEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() {}

type fixture struct {
	ws        *workspace
	ds        *Datastore
	index     *recordingIndex
	publisher *recordingPublisher
	fs        afero.Fs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ws, srv := newWorkspace(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(cache.ModelsToAutoMigrate()...))

	conn, err := connector.New(&connector.Config{
		APIKey:               "test-key",
		BaseURL:              srv.URL,
		MaxRetries:           1,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     time.Millisecond,
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	backend, err := filestore.NewLocalBackend(fs, &filestore.LocalConfig{
		Path:    "/files",
		BaseURL: "http://localhost:8000/files",
	}, nil)
	require.NoError(t, err)

	index := newRecordingIndex()
	publisher := &recordingPublisher{}

	ds, err := New(Config{
		Connector: conn,
		Cache:     cache.New(db, nil),
		FileStore: filestore.New(backend, nil, nil),
		Search:    index,
		Events:    publisher,
	})
	require.NoError(t, err)

	return &fixture{ws: ws, ds: ds, index: index, publisher: publisher, fs: fs}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSyncDocumentFetchesContentOnlyWhenStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	children := "GET /v1/blocks/" + testDocumentID + "/children"

	doc, err := f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc.BlocksLastSyncedAt)
	assert.Equal(t, 1, f.ws.count(children))
	assert.Equal(t, testDocSlug, doc.Slug)

	// The database was cached on demand.
	assert.Equal(t, 1, f.ws.count("GET /v1/databases/"+testDatabaseID))

	blocks := doc.Blocks.Data
	require.Len(t, blocks, 2)
	assert.Equal(t, notion.BlockTypeHeading1, blocks[0].Type)
	assert.Equal(t, notion.BlockTypeBulletedList, blocks[1].Type)
	assert.Len(t, blocks[1].Children, 2)

	// Unchanged in Notion: properties are refreshed, content is not.
	doc, err = f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.ws.count("GET /v1/pages/"+testDocumentID))
	assert.Equal(t, 1, f.ws.count(children))
	assert.False(t, cache.AreCachedDocumentBlocksStale(doc))

	// Edited in Notion after the last content sync.
	f.ws.setLastEdited("2999-01-01T00:00:00.000Z")
	doc, err = f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.ws.count(children))
	assert.Equal(t, time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC), doc.NotionLastEditedTime.UTC())
}

func TestSyncCopiesFilesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)

	cover := doc.Cover.Data
	require.NotNil(t, cover)
	assert.True(t, strings.HasPrefix(cover.URL, "http://localhost:8000/files/"), cover.URL)
	assert.True(t, strings.HasSuffix(cover.URL, ".png"), cover.URL)

	name := strings.TrimPrefix(cover.URL, "http://localhost:8000/files")
	data, err := afero.ReadFile(f.fs, "/files"+name)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	_, err = f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)
	f.ws.mu.Lock()
	assert.Equal(t, 1, f.ws.fileRequests)
	f.ws.mu.Unlock()
}

func TestSyncAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ds.Sync.All(ctx))

	dbs, err := f.ds.Query.Databases(ctx)
	require.NoError(t, err)
	require.Len(t, dbs, 1)
	assert.Equal(t, "engineering-blog", dbs[0].Slug)
	assert.Len(t, dbs[0].PropertySchema.Data, 2)

	doc, err := f.ds.Query.Document(ctx, cache.BySlug("engineering-blog"), cache.BySlug(testDocSlug))
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.NotNil(t, doc.BlocksLastSyncedAt)
	assert.Contains(t, doc.PlainText, "Introduction")

	// People were resolved against the users synced first.
	var owner *notion.Property
	for i, p := range doc.Properties.Data {
		if p.Name == "Owner" {
			owner = &doc.Properties.Data[i]
		}
	}
	require.NotNil(t, owner)
	people, ok := owner.Value.([]notion.Person)
	require.True(t, ok)
	require.Len(t, people, 1)
	assert.Equal(t, "Ada", people[0].Name)

	// The search connected databases call carries the schema; the on-demand
	// database fetch is never needed.
	assert.Equal(t, 0, f.ws.count("GET /v1/databases/"+testDatabaseID))

	// A second run finds nothing stale.
	require.NoError(t, f.ds.Sync.All(ctx))
	assert.Equal(t, 1, f.ws.count("GET /v1/blocks/"+testDocumentID+"/children"))
}

func TestSyncIndexesAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ds.Sync.Databases(ctx)
	require.NoError(t, err)
	_, err = f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)

	indexed := f.index.docs[testDocumentID]
	require.NotNil(t, indexed)
	assert.Equal(t, "engineering-blog", indexed.DatabaseSlug)
	assert.Equal(t, testDocSlug, indexed.Slug)
	assert.Equal(t, "My First Post", indexed.Title)
	assert.Equal(t, "Introduction\n - gophers\n - channels", indexed.Content)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.EventTypeDatabaseSynced, f.publisher.events[0].EventType)
	assert.Equal(t, "engineering-blog", f.publisher.events[0].Slug)
	docEvent := f.publisher.events[1]
	assert.Equal(t, events.EventTypeDocumentSynced, docEvent.EventType)
	assert.Equal(t, testDocumentID, docEvent.NotionID)
	assert.Equal(t, testDatabaseID, docEvent.DatabaseID)
	assert.True(t, docEvent.ContentSynced)

	res, err := f.ds.Query.Search(ctx, &search.Query{Query: "gophers"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalHits)

	f.index.docs = map[string]*search.Document{}
	n, err := f.ds.Sync.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.index.cleared)
	assert.Contains(t, f.index.docs, testDocumentID)
}

func TestSyncDatabaseDocumentsCachesUnknownDatabase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	docs, err := f.ds.Sync.DatabaseDocuments(ctx, testDatabaseID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, testDocumentID, docs[0].NotionID)
	assert.Equal(t, 1, f.ws.count("GET /v1/databases/"+testDatabaseID))

	db, err := f.ds.Query.Database(ctx, cache.ByID(testDatabaseID))
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, "Engineering Blog", db.Name)

	// A second pass finds the database in the cache.
	_, err = f.ds.Sync.DatabaseDocuments(ctx, testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.ws.count("GET /v1/databases/"+testDatabaseID))
}

func TestSyncDocumentKeepsCachedDatabaseSchema(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ds.Sync.Databases(ctx)
	require.NoError(t, err)

	db, err := f.ds.Query.Database(ctx, cache.ByID(testDatabaseID))
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Len(t, db.PropertySchema.Data, 2)

	doc, err := f.ds.Sync.Document(ctx, testDocumentID)
	require.NoError(t, err)
	assert.Equal(t, testDocSlug, doc.Slug)
	assert.Equal(t, 0, f.ws.count("GET /v1/databases/"+testDatabaseID))

	db, err = f.ds.Query.Database(ctx, cache.ByID(testDatabaseID))
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Len(t, db.PropertySchema.Data, 2)
}

func TestSyncDocumentContentRequiresCachedDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.ds.Sync.DocumentContent(context.Background(), testDocumentID)
	assert.ErrorIs(t, err, cache.ErrDocumentNotFound)
}

func TestSyncDocumentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.ds.Sync.Document(context.Background(), "missing")
	assert.ErrorIs(t, err, connector.ErrNotFound)
}

func TestQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ds.Sync.Databases(ctx)
	require.NoError(t, err)
	_, err = f.ds.Sync.DatabaseDocuments(ctx, testDatabaseID)
	require.NoError(t, err)

	t.Run("unknown database", func(t *testing.T) {
		doc, err := f.ds.Query.Document(ctx, cache.BySlug("nope"), cache.BySlug(testDocSlug))
		require.NoError(t, err)
		assert.Nil(t, doc)

		docs, err := f.ds.Query.DocumentsInDatabase(ctx, cache.BySlug("nope"))
		require.NoError(t, err)
		assert.Nil(t, docs)
	})

	t.Run("unknown document", func(t *testing.T) {
		doc, err := f.ds.Query.Document(ctx, cache.BySlug("engineering-blog"), cache.BySlug("nope"))
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("document by id in the wrong database", func(t *testing.T) {
		doc, err := f.ds.Query.Document(ctx, cache.BySlug("other"), cache.ByID(testDocumentID))
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("document by id", func(t *testing.T) {
		doc, err := f.ds.Query.Document(ctx, cache.BySlug("engineering-blog"), cache.ByID(testDocumentID))
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, testDocSlug, doc.Slug)
		// Content was never synced.
		assert.Nil(t, doc.BlocksLastSyncedAt)
	})

	t.Run("documents in database", func(t *testing.T) {
		docs, err := f.ds.Query.DocumentsInDatabase(ctx, cache.BySlug("engineering-blog"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, testDocumentID, docs[0].NotionID)
	})
}

func TestSearchDisabled(t *testing.T) {
	f := newFixture(t)
	f.ds.Query.searchIndex = nil

	_, err := f.ds.Query.Search(context.Background(), &search.Query{Query: "x"})
	assert.ErrorIs(t, err, ErrSearchDisabled)

	_, err = f.ds.Sync.Reindex(context.Background())
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
