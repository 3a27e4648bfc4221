package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log         config.Log
		HTTP        config.HTTP
		Docs        config.Docs
		Collections config.Collections
		Relay       config.Relay
	}

	t.Run("Should apply defaults", func(t *testing.T) {
		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.True(t, cfg.HTTP.Swagger)
		assert.Equal(t, []string{"*"}, cfg.HTTP.CorsAllowedOrigins)

		assert.Equal(t, "./apispec.json", cfg.Docs.SpecURL)
		assert.Equal(t, "swagger-ui", cfg.Docs.MountID)
		assert.True(t, cfg.Docs.DeepLinking)
		assert.Equal(t, []string{"apis", "standalone"}, cfg.Docs.Presets)
		assert.Equal(t, "BaseLayout", cfg.Docs.Layout)

		assert.Equal(t, "./config.json", cfg.Collections.File)
		assert.Equal(t, uint32(100), cfg.Relay.BatchSize)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
	})

	t.Run("Should read environment overrides", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("DOCS_SPEC_URL", "/openapi.json")
		t.Setenv("DOCS_DEEP_LINKING", "false")
		t.Setenv("DOCS_PRESETS", "apis")
		t.Setenv("DOCS_LAYOUT", "StandaloneLayout")
		t.Setenv("COLLECTIONS_FILE", "/etc/quickstore/collections.yaml")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, "/openapi.json", cfg.Docs.SpecURL)
		assert.False(t, cfg.Docs.DeepLinking)
		assert.Equal(t, []string{"apis"}, cfg.Docs.Presets)
		assert.Equal(t, "StandaloneLayout", cfg.Docs.Layout)
		assert.Equal(t, "/etc/quickstore/collections.yaml", cfg.Collections.File)
	})

	t.Run("Should reject unknown log format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}

func TestNewFromMap(t *testing.T) {
	type Config struct {
		Postgres config.Postgres
		Kafka    config.Kafka
	}

	t.Run("Should fill pool defaults", func(t *testing.T) {
		cfg, err := config.NewFromMap[Config](map[string]string{
			"POSTGRES_HOST":     "db",
			"POSTGRES_USER":     "quickstore",
			"POSTGRES_PASSWORD": "secret",
			"POSTGRES_DB":       "quickstore",
			"KAFKA_ADDRESSES":   "k1:9092,k2:9092",
		})
		require.NoError(t, err)

		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
		assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addresses)
		assert.Equal(t, "quickstore-audit", cfg.Kafka.Group)
	})

	t.Run("Should require connection settings", func(t *testing.T) {
		_, err := config.NewFromMap[Config](map[string]string{})
		assert.ErrorContains(t, err, "POSTGRES_HOST")
	})
}

func TestLogFormatString(t *testing.T) {
	assert.Equal(t, "JSON", config.LogFormatJSON.String())
	assert.Equal(t, "TEXT", config.LogFormatText.String())
	assert.Equal(t, "LogFormat(7)", config.LogFormat(7).String())
}
