package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/quickstore/internal/config"
)

func TestConnectionString(t *testing.T) {
	cfg := config.Postgres{
		Host:     "db.internal",
		Port:     5433,
		User:     "quick store",
		Password: "p@ss/w:rd?",
		DB:       "quickstore",
		SSLMode:  "require",
	}

	connStr := connectionString(cfg)

	parsed, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", parsed.ConnConfig.Host)
	assert.Equal(t, uint16(5433), parsed.ConnConfig.Port)
	assert.Equal(t, "quick store", parsed.ConnConfig.User)
	assert.Equal(t, "p@ss/w:rd?", parsed.ConnConfig.Password)
	assert.Equal(t, "quickstore", parsed.ConnConfig.Database)
}
