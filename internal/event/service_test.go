package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/event"
	"github.com/tuanvumaihuynh/quickstore/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	running  bool
	stopped  bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.running = true
	return func() { c.stopped = true }, nil
}

func TestService(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	consumer := &fakeConsumer{}

	cleanup, err := event.New(logger, consumer).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, consumer.running)

	t.Run("Should subscribe to every document topic", func(t *testing.T) {
		for _, topic := range event.DocumentTopics {
			assert.Contains(t, consumer.handlers, topic)
		}
	})

	t.Run("Should audit document events", func(t *testing.T) {
		payload, err := json.Marshal(event.DocumentEvent{
			Collection: "users",
			DocumentID: 7,
			OccurredAt: time.Now(),
		})
		require.NoError(t, err)

		err = consumer.handlers[event.TopicDocumentDeleted](context.Background(), event.TopicDocumentDeleted, payload)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"collection":"users"`)
		assert.Contains(t, buf.String(), `"document_id":7`)
	})

	t.Run("Should reject malformed payloads", func(t *testing.T) {
		err := consumer.handlers[event.TopicDocumentCreated](context.Background(), event.TopicDocumentCreated, []byte("{"))
		assert.Error(t, err)
	})

	cleanup()
	assert.True(t, consumer.stopped)
}
