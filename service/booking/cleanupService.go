package bookingsvc

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type StaleRepo interface {
	CancelStalePending(ctx context.Context, createdBefore time.Time) (int64, error)
}

// Cleaner cancels pending bookings nobody confirmed within ttl.
type Cleaner interface {
	ExpirePending(ctx context.Context) (int64, error)
	Run(ctx context.Context, every time.Duration)
}

type cleaner struct {
	r   StaleRepo
	ttl time.Duration
	now func() time.Time
	log *zap.Logger
}

func NewCleaner(r StaleRepo, ttl time.Duration, log *zap.Logger) Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &cleaner{r: r, ttl: ttl, now: time.Now, log: log}
}

func (c *cleaner) ExpirePending(ctx context.Context) (int64, error) {
	return c.r.CancelStalePending(ctx, c.now().UTC().Add(-c.ttl))
}

// Run expires stale bookings every interval until ctx is done.
func (c *cleaner) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := c.ExpirePending(ctx)
			if err != nil {
				c.log.Warn("expire pending bookings", zap.Error(err))
				continue
			}
			if n > 0 {
				c.log.Info("expired pending bookings", zap.Int64("count", n))
			}
		}
	}
}
