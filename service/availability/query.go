package availability

import (
	"context"
	"fmt"

	"github.com/Ahmadfnugroho/gpr-sub003/model"

	"golang.org/x/sync/errgroup"
)

// Service is the entry point for API handlers and admin widgets.
type Service interface {
	Compute(ctx context.Context, ref model.EntityRef, rng model.Range, opts Options) (*model.AvailabilityResult, error)
	// ComputeMultiple evaluates every entity independently against the same
	// range. Results keep the order of refs.
	ComputeMultiple(ctx context.Context, refs []model.EntityRef, rng model.Range, opts Options) ([]*model.AvailabilityResult, error)
}

type service struct {
	engine      Engine
	cache       Cache
	concurrency int
}

// New wires the query facade. cache may be nil; concurrency <= 0 means unbounded.
func New(engine Engine, cache Cache, concurrency int) Service {
	return &service{engine: engine, cache: cache, concurrency: concurrency}
}

func (s *service) Compute(ctx context.Context, ref model.EntityRef, rng model.Range, opts Options) (*model.AvailabilityResult, error) {
	if err := rng.Validate(); err != nil {
		return nil, wrap(ErrInvalidRange, err)
	}

	var compute func(context.Context, int64, model.Range, Options) (*model.AvailabilityResult, error)
	switch ref.Type {
	case model.EntityProduct:
		compute = s.engine.ComputeProductAvailability
	case model.EntityBundle:
		compute = s.engine.ComputeBundleAvailability
	default:
		return nil, makeErr(ErrInvalidEntity, "unknown entity type %q", ref.Type)
	}

	key := CacheKey(ref, rng, opts.Serials)
	if s.cache != nil && !opts.Fresh {
		if res, ok := s.cache.Get(ctx, key); ok {
			return res, nil
		}
	}

	res, err := compute(ctx, ref.ID, rng, opts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, res)
	}
	return res, nil
}

func (s *service) ComputeMultiple(ctx context.Context, refs []model.EntityRef, rng model.Range, opts Options) ([]*model.AvailabilityResult, error) {
	if err := rng.Validate(); err != nil {
		return nil, wrap(ErrInvalidRange, err)
	}

	out := make([]*model.AvailabilityResult, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, ref := range refs {
		g.Go(func() error {
			res, err := s.Compute(gctx, ref, rng, opts)
			if err != nil {
				return fmt.Errorf("%s %d: %w", ref.Type, ref.ID, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
