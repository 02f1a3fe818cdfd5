package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "ORC", cfg.QuoteNumberPrefix)
	assert.Equal(t, 2, cfg.QuoteNumberAttempts)
	assert.Equal(t, time.Minute, cfg.DashboardCacheTTL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("QUOTE_NUMBER_PREFIX", "QT")
	t.Setenv("DASHBOARD_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "QT", cfg.QuoteNumberPrefix)
	assert.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
}
