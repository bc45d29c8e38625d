// Package events publishes sync notifications to Kafka/Redpanda.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EventType names a sync notification.
type EventType string

const (
	EventTypeDocumentSynced EventType = "document.synced"
	EventTypeDatabaseSynced EventType = "database.synced"
)

// SyncEvent is the value of every published record.
type SyncEvent struct {
	EventType    EventType `json:"eventType"`
	NotionID     string    `json:"notionId"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	DatabaseID   string    `json:"databaseId,omitempty"`
	DatabaseSlug string    `json:"databaseSlug,omitempty"`
	// ContentSynced is true when a document sync also refreshed its blocks.
	ContentSynced bool      `json:"contentSynced,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher is the interface used by the datastore. A nil Publisher disables
// events.
type Publisher interface {
	Publish(ctx context.Context, event SyncEvent) error
	Close()
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string
	Logger  hclog.Logger
}

// KafkaPublisher publishes sync events with a franz-go client.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger hclog.Logger
	now    func() time.Time
}

// New creates a new KafkaPublisher.
func New(cfg Config) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),

		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.GzipCompression()),

		kgo.RetryBackoffFn(func(tries int) time.Duration {
			backoff := time.Duration(tries) * 100 * time.Millisecond
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			return backoff
		}),
		kgo.RequestRetries(10),

		kgo.ProducerLinger(10*time.Millisecond),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaPublisher{
		client: client,
		topic:  cfg.Topic,
		logger: cfg.Logger.Named("events"),
		now:    time.Now,
	}, nil
}

// Publish sends the event and waits for the broker acknowledgement.
func (p *KafkaPublisher) Publish(ctx context.Context, event SyncEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}

	record, err := buildRecord(p.topic, event)
	if err != nil {
		return err
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	p.logger.Debug("published sync event",
		"event_type", event.EventType,
		"notion_id", event.NotionID,
		"topic", p.topic,
	)
	return nil
}

// Close flushes and closes the underlying client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// buildRecord keys records by remote id so that events for one object stay
// ordered within a partition.
func buildRecord(topic string, event SyncEvent) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := []kgo.RecordHeader{
		{Key: "event_type", Value: []byte(event.EventType)},
	}
	if event.DatabaseID != "" {
		headers = append(headers, kgo.RecordHeader{Key: "database_id", Value: []byte(event.DatabaseID)})
	}

	return &kgo.Record{
		Topic:   topic,
		Key:     []byte(event.NotionID),
		Value:   value,
		Headers: headers,
	}, nil
}
