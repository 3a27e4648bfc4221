package metric_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/http/metric"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.New(reg)

	m.RequestsTotal.WithLabelValues("GET", "/api/{collection}", "200").Inc()
	m.InflightRequests.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/{collection}", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.InflightRequests), 0)

	t.Run("Should register on separate registries independently", func(t *testing.T) {
		require.NotPanics(t, func() {
			metric.New(prometheus.NewRegistry())
		})
	})
}
