package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// kafkaHooks traces produce and fetch calls of a client. Record spans
// continue the trace found in record headers.
func kafkaHooks(opts ...kotel.TracerOpt) kgo.Opt {
	opts = append([]kotel.TracerOpt{
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	}, opts...)

	return kgo.WithHooks(kotel.NewTracer(opts...))
}
