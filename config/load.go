package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the environment, after an optional .env file in the working
// directory.
func Load() (App, error) {
	_ = godotenv.Load()

	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Env:         getenv("APP_ENV", "dev"),
	}
	if cfg.DatabaseURL == "" {
		return App{}, fmt.Errorf("missing env DATABASE_URL")
	}

	ttl, err := time.ParseDuration(getenv("AVAILABILITY_CACHE_TTL", "30s"))
	if err != nil {
		return App{}, fmt.Errorf("AVAILABILITY_CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	pending, err := time.ParseDuration(getenv("PENDING_BOOKING_TTL", "48h"))
	if err != nil {
		return App{}, fmt.Errorf("PENDING_BOOKING_TTL: %w", err)
	}
	cfg.PendingTTL = pending

	n, err := strconv.Atoi(getenv("BATCH_CONCURRENCY", "8"))
	if err != nil || n < 1 {
		return App{}, fmt.Errorf("BATCH_CONCURRENCY must be a positive integer")
	}
	cfg.BatchConcurrency = n
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
