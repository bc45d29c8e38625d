// Package kafka resolves Kafka/Redpanda settings from the environment and the
// configuration file.
package kafka

import (
	"os"
	"strings"

	"github.com/hashicorp-forge/notion-mirror/internal/config"
)

// Enabled reports whether sync events should be published.
func Enabled(cfg *config.Config) bool {
	return os.Getenv("REDPANDA_BROKERS") != "" || cfg.Events != nil
}

// GetBrokers returns the Kafka/Redpanda broker addresses.
// It checks environment variables first, then falls back to config, then default.
func GetBrokers(cfg *config.Config) []string {
	if brokers := os.Getenv("REDPANDA_BROKERS"); brokers != "" {
		return strings.Split(brokers, ",")
	}

	if cfg.Events != nil && len(cfg.Events.Brokers) > 0 {
		return cfg.Events.Brokers
	}

	return []string{"localhost:19092"}
}

// GetSyncTopic returns the topic sync events are published to.
// It checks environment variables first, then falls back to config, then default.
func GetSyncTopic(cfg *config.Config) string {
	if topic := os.Getenv("SYNC_EVENTS_TOPIC"); topic != "" {
		return topic
	}

	if cfg.Events != nil && cfg.Events.Topic != "" {
		return cfg.Events.Topic
	}

	return "notion-mirror.sync"
}
