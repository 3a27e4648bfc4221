package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/quickstore/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should copy headers in key order", func(t *testing.T) {
		r := buildProduceRecord(ProduceMsg{
			Topic:   "document.created",
			Headers: map[string]string{"traceparent": "00-abc", "X-Correlation-ID": "corr"},
			Payload: []byte(`{"collection":"users"}`),
		})

		assert.Equal(t, "document.created", r.Topic)
		assert.Equal(t, []byte(`{"collection":"users"}`), r.Value)
		assert.Equal(t, []kgo.RecordHeader{
			{Key: "X-Correlation-ID", Value: []byte("corr")},
			{Key: "traceparent", Value: []byte("00-abc")},
		}, r.Headers)
		assert.Nil(t, r.Key)
	})

	t.Run("Should set the partition key", func(t *testing.T) {
		r := buildProduceRecord(ProduceMsg{Topic: "t", PartitionKey: ptr.New("users/1")})
		assert.Equal(t, []byte("users/1"), r.Key)
	})
}
