package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

func createKafkaTopic(t *testing.T, ctx context.Context, brokers string, topicName string) {
	adminClient, err := kgo.NewClient(
		kgo.SeedBrokers(brokers),
	)
	require.NoError(t, err)
	defer adminClient.Close()

	createTopicsReq := kmsg.NewCreateTopicsRequest()
	createTopicsReq.Topics = []kmsg.CreateTopicsRequestTopic{
		{
			Topic:             topicName,
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}
	_, err = adminClient.Request(ctx, &createTopicsReq)
	require.NoError(t, err)

	time.Sleep(1 * time.Second)
}

func TestKafkaPublisher_PublishToRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "test",
		Level: hclog.Debug,
	})

	redpandaContainer, err := redpanda.Run(ctx,
		"docker.redpanda.com/redpandadata/redpanda:latest",
	)
	require.NoError(t, err)
	defer func() {
		_ = redpandaContainer.Terminate(ctx)
	}()

	brokers, err := redpandaContainer.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	topic := "test.notion-mirror-sync"
	createKafkaTopic(t, ctx, brokers, topic)

	publisher, err := New(Config{
		Brokers: []string{brokers},
		Topic:   topic,
		Logger:  logger,
	})
	require.NoError(t, err)
	defer publisher.Close()

	require.NoError(t, publisher.Publish(ctx, SyncEvent{
		EventType:    EventTypeDocumentSynced,
		NotionID:     "5c6a2821-6bb1-4a7e-b6e1-c50111515c3d",
		Slug:         "faq6wzib-my-first-post",
		Name:         "My first post",
		DatabaseID:   "db-1",
		DatabaseSlug: "blog",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(brokers),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup("test-consumer"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var received *SyncEvent
	var key string
	for received == nil {
		fetches := consumer.PollFetches(fetchCtx)
		if fetches.IsClientClosed() || fetchCtx.Err() != nil {
			break
		}
		if err := fetches.Err(); err != nil {
			t.Fatalf("fetch error: %v", err)
		}

		fetches.EachRecord(func(record *kgo.Record) {
			var event SyncEvent
			require.NoError(t, json.Unmarshal(record.Value, &event))
			received = &event
			key = string(record.Key)
		})
	}

	require.NotNil(t, received, "no message received from Redpanda")
	assert.Equal(t, "5c6a2821-6bb1-4a7e-b6e1-c50111515c3d", key)
	assert.Equal(t, EventTypeDocumentSynced, received.EventType)
	assert.Equal(t, "faq6wzib-my-first-post", received.Slug)
	assert.Equal(t, "blog", received.DatabaseSlug)
	assert.False(t, received.Timestamp.IsZero())
}
