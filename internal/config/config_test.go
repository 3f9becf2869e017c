package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "ORDER_PLACEMENT_TIMEOUT", "STORE_BACKEND", "DATABASE_MAX_CONNS", "DATABASE_MIN_CONNS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.OrderPlacementTimeout)
	assert.Equal(t, int32(25), cfg.DatabaseMaxConns)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
	assert.Contains(t, cfg.DatabaseURL, "sslmode=disable")
}

func TestLoadBuildsURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_USER", "shop")
	t.Setenv("DATABASE_PASSWORD", "p@ss")
	t.Setenv("DATABASE_HOST", "db")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("DATABASE_NAME", "commerce")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://shop:p%40ss@db:6543/commerce?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")
	t.Setenv("ORDER_PLACEMENT_TIMEOUT", "2s")
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h:5432/d", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Second, cfg.OrderPlacementTimeout)
	assert.False(t, cfg.DatabaseAutoMigrate)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		"ORDER_PLACEMENT_TIMEOUT": "soon",
		"DATABASE_MAX_CONNS":      "-1",
		"DATABASE_AUTO_MIGRATE":   "perhaps",
		"STORE_BACKEND":           "redis",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := Load()

			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadRejectsMinAboveMax(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "2")
	t.Setenv("DATABASE_MIN_CONNS", "3")

	_, err := Load()

	assert.Error(t, err)
}
