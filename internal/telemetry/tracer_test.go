package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.9.0"

	"github.com/tuanvumaihuynh/quickstore/internal/config"
)

func TestInitTracer(t *testing.T) {
	t.Run("Should be a no-op without a collector", func(t *testing.T) {
		cleanup, err := InitTracer(context.Background(), config.Otel{ServiceName: "quickstore"})
		require.NoError(t, err)
		assert.NoError(t, cleanup(context.Background()))

		fields := otel.GetTextMapPropagator().Fields()
		assert.Contains(t, fields, "traceparent")
		assert.Contains(t, fields, "baggage")
	})
}

func TestClientOptions(t *testing.T) {
	insecure := clientOptions(config.Otel{CollectorURL: "collector:4317", Insecure: true})
	assert.Len(t, insecure, 2)

	withAuth := clientOptions(config.Otel{CollectorURL: "collector:4317", CollectorAuth: "Bearer x"})
	assert.Len(t, withAuth, 3)
}

func TestResourceAttributes(t *testing.T) {
	attrs := resourceAttributes(config.Otel{ServiceName: "quickstore", K8sPodName: "pod-1"})

	require.Len(t, attrs, 2)
	assert.Equal(t, semconv.ServiceNameKey, attrs[0].Key)
	assert.Equal(t, "pod-1", attrs[1].Value.AsString())
}
