package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashicorp-forge/notion-mirror/internal/config"
)

func TestGetBrokers(t *testing.T) {
	t.Setenv("REDPANDA_BROKERS", "")

	assert.Equal(t, []string{"localhost:19092"}, GetBrokers(&config.Config{}))
	assert.Equal(t, []string{"kafka:9092"}, GetBrokers(&config.Config{
		Events: &config.Events{Brokers: []string{"kafka:9092"}},
	}))

	t.Setenv("REDPANDA_BROKERS", "a:1,b:2")
	assert.Equal(t, []string{"a:1", "b:2"}, GetBrokers(&config.Config{
		Events: &config.Events{Brokers: []string{"kafka:9092"}},
	}))
}

func TestGetSyncTopic(t *testing.T) {
	t.Setenv("SYNC_EVENTS_TOPIC", "")

	assert.Equal(t, "notion-mirror.sync", GetSyncTopic(&config.Config{}))
	assert.Equal(t, "custom", GetSyncTopic(&config.Config{Events: &config.Events{Topic: "custom"}}))

	t.Setenv("SYNC_EVENTS_TOPIC", "from-env")
	assert.Equal(t, "from-env", GetSyncTopic(&config.Config{Events: &config.Events{Topic: "custom"}}))
}

func TestEnabled(t *testing.T) {
	t.Setenv("REDPANDA_BROKERS", "")
	assert.False(t, Enabled(&config.Config{}))
	assert.True(t, Enabled(&config.Config{Events: &config.Events{}}))

	t.Setenv("REDPANDA_BROKERS", "a:1")
	assert.True(t, Enabled(&config.Config{}))
}
