package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rental")
	t.Setenv("APP_PORT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("AVAILABILITY_CACHE_TTL", "")
	t.Setenv("BATCH_CONCURRENCY", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("PENDING_BOOKING_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, 8, cfg.BatchConcurrency)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 48*time.Hour, cfg.PendingTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rental")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AVAILABILITY_CACHE_TTL", "5s")
	t.Setenv("BATCH_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, 5*time.Second, cfg.CacheTTL)
	require.Equal(t, 2, cfg.BatchConcurrency)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/rental")
	t.Setenv("BATCH_CONCURRENCY", "0")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("AVAILABILITY_CACHE_TTL", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "AVAILABILITY_CACHE_TTL")
}
