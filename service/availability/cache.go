package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ahmadfnugroho/gpr-sub003/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const CachePrefix = "availability:"

// Cache stores computed results for a short time. Implementations swallow
// their own failures: a broken cache degrades to a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*model.AvailabilityResult, bool)
	Set(ctx context.Context, key string, res *model.AvailabilityResult)
}

func CacheKey(ref model.EntityRef, rng model.Range, serials bool) string {
	return fmt.Sprintf("%s%s:%d:%d:%d:%t",
		CachePrefix, ref.Type, ref.ID, rng.Start.UnixNano(), rng.End.UnixNano(), serials)
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.AvailabilityResult, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var res model.AvailabilityResult
	if err := json.Unmarshal(raw, &res); err != nil {
		c.log.Warn("availability cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (c *RedisCache) Set(ctx context.Context, key string, res *model.AvailabilityResult) {
	b, err := json.Marshal(res)
	if err != nil {
		c.log.Warn("availability cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.log.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
	}
}
