package config

import "time"

type App struct {
	Port             string        `env:"APP_PORT" default:"8080"`
	DatabaseURL      string        `env:"DATABASE_URL,required"`
	RedisURL         string        `env:"REDIS_URL"`
	CacheTTL         time.Duration `env:"AVAILABILITY_CACHE_TTL" default:"30s"`
	BatchConcurrency int           `env:"BATCH_CONCURRENCY" default:"8"`
	PendingTTL       time.Duration `env:"PENDING_BOOKING_TTL" default:"48h"`
	Env              string        `env:"APP_ENV" default:"dev"`
}
