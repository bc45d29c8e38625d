package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecord(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("document event", func(t *testing.T) {
		record, err := buildRecord("notion-mirror.sync", SyncEvent{
			EventType:     EventTypeDocumentSynced,
			NotionID:      "doc-1",
			Slug:          "abc-my-doc",
			Name:          "My Doc",
			DatabaseID:    "db-1",
			DatabaseSlug:  "blog",
			ContentSynced: true,
			Timestamp:     ts,
		})
		require.NoError(t, err)

		assert.Equal(t, "notion-mirror.sync", record.Topic)
		assert.Equal(t, "doc-1", string(record.Key))
		require.Len(t, record.Headers, 2)
		assert.Equal(t, "event_type", record.Headers[0].Key)
		assert.Equal(t, "document.synced", string(record.Headers[0].Value))
		assert.Equal(t, "database_id", record.Headers[1].Key)
		assert.Equal(t, "db-1", string(record.Headers[1].Value))

		var decoded SyncEvent
		require.NoError(t, json.Unmarshal(record.Value, &decoded))
		assert.Equal(t, EventTypeDocumentSynced, decoded.EventType)
		assert.Equal(t, "abc-my-doc", decoded.Slug)
		assert.True(t, decoded.ContentSynced)
		assert.True(t, ts.Equal(decoded.Timestamp))
	})

	t.Run("database event has no database header", func(t *testing.T) {
		record, err := buildRecord("t", SyncEvent{
			EventType: EventTypeDatabaseSynced,
			NotionID:  "db-1",
			Slug:      "blog",
		})
		require.NoError(t, err)
		require.Len(t, record.Headers, 1)
		assert.Equal(t, "database.synced", string(record.Headers[0].Value))

		var raw map[string]any
		require.NoError(t, json.Unmarshal(record.Value, &raw))
		assert.NotContains(t, raw, "databaseId")
		assert.NotContains(t, raw, "contentSynced")
	})
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Topic: "t"})
	assert.Error(t, err)

	_, err = New(Config{Brokers: []string{"localhost:19092"}})
	assert.Error(t, err)
}
