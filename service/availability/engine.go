package availability

import (
	"context"
	"fmt"

	"github.com/Ahmadfnugroho/gpr-sub003/model"

	"golang.org/x/sync/errgroup"
)

type ItemRepo interface {
	ProductExists(ctx context.Context, productID int64) (bool, error)
	CountItems(ctx context.Context, productID int64) (int, error)
	ListSerials(ctx context.Context, productID int64) ([]string, error)
}

type BookingRepo interface {
	// ListActiveLines returns lines touching productID, directly or through a
	// bundle, whose booking is active and overlaps rng. The engine re-applies
	// both filters, so a raw listing is also acceptable.
	ListActiveLines(ctx context.Context, productID int64, rng model.Range) ([]model.LedgerLine, error)
}

type BundleRepo interface {
	// GetBundle returns nil, nil for an unknown bundle.
	GetBundle(ctx context.Context, bundleID int64) (*model.Bundle, error)
}

type Options struct {
	// Serials requests the identity of the free units, not just the count.
	Serials bool
	// Fresh skips the result cache.
	Fresh bool
}

// Engine computes availability from the item, booking and bundle stores.
// It holds no mutable state and is safe for concurrent use.
type Engine interface {
	ComputeProductAvailability(ctx context.Context, productID int64, rng model.Range, opts Options) (*model.AvailabilityResult, error)
	ComputeBundleAvailability(ctx context.Context, bundleID int64, rng model.Range, opts Options) (*model.AvailabilityResult, error)
}

type engine struct {
	items    ItemRepo
	bookings BookingRepo
	bundles  BundleRepo
	// limit bounds concurrent store reads within one call; 0 means unbounded.
	limit int
}

func NewEngine(items ItemRepo, bookings BookingRepo, bundles BundleRepo) Engine {
	return &engine{items: items, bookings: bookings, bundles: bundles}
}

// NewSequentialEngine issues one store read at a time. Use it when the stores
// share a single connection, such as repositories bound to a transaction.
func NewSequentialEngine(items ItemRepo, bookings BookingRepo, bundles BundleRepo) Engine {
	return &engine{items: items, bookings: bookings, bundles: bundles, limit: 1}
}

func (e *engine) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	return g, gctx
}

func (e *engine) ComputeProductAvailability(ctx context.Context, productID int64, rng model.Range, opts Options) (*model.AvailabilityResult, error) {
	if err := rng.Validate(); err != nil {
		return nil, wrap(ErrInvalidRange, err)
	}
	exists, err := e.items.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, makeErr(ErrEntityNotFound, "product %d", productID)
	}

	var (
		total   int
		serials []string
		lines   []model.LedgerLine
	)
	g, gctx := e.group(ctx)
	g.Go(func() error {
		if !opts.Serials {
			n, err := e.items.CountItems(gctx, productID)
			total = n
			return err
		}
		s, err := e.items.ListSerials(gctx, productID)
		serials, total = s, len(s)
		return err
	})
	g.Go(func() error {
		l, err := e.bookings.ListActiveLines(gctx, productID, rng)
		lines = l
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	u, err := e.consumption(ctx, productID, rng, lines, serials, opts.Serials)
	if err != nil {
		return nil, err
	}

	res := &model.AvailabilityResult{
		EntityID:       productID,
		EntityType:     model.EntityProduct,
		RangeStart:     rng.Start,
		RangeEnd:       rng.End,
		TotalUnits:     total,
		AvailableUnits: max(0, total-u.units),
		Warnings:       u.warnings,
	}
	if opts.Serials {
		res.SerialDetailIncomplete = u.incomplete
		res.AvailableSerialNumbers = make([]string, 0, len(serials))
		for _, sn := range serials {
			if _, taken := u.assigned[sn]; !taken {
				res.AvailableSerialNumbers = append(res.AvailableSerialNumbers, sn)
			}
		}
	}
	return res, nil
}

type usage struct {
	units      int
	assigned   map[string]struct{}
	incomplete bool
	warnings   []model.Warning
}

// consumption sums the units of productID held by qualifying lines and, when
// withSerials is set, collects the serials those lines name explicitly.
func (e *engine) consumption(ctx context.Context, productID int64, rng model.Range, lines []model.LedgerLine, serials []string, withSerials bool) (*usage, error) {
	u := &usage{assigned: map[string]struct{}{}}

	var owned map[string]struct{}
	if withSerials {
		owned = make(map[string]struct{}, len(serials))
		for _, sn := range serials {
			owned[sn] = struct{}{}
		}
	}

	perBundle := map[int64]int{}
	for _, l := range lines {
		if !l.Status.IsActive() || !rng.Overlaps(l.StartDate, l.EndDate) {
			continue
		}

		per := 0
		switch l.Target.Kind {
		case model.TargetProduct:
			if l.Target.ID == productID {
				per = 1
			}
		case model.TargetBundle:
			q, ok := perBundle[l.Target.ID]
			if !ok {
				var err error
				if q, err = e.requiredPerBundle(ctx, l.Target.ID, productID); err != nil {
					return nil, err
				}
				perBundle[l.Target.ID] = q
			}
			per = q
		}
		if per == 0 || l.Quantity <= 0 {
			continue
		}
		consumed := l.Quantity * per
		u.units += consumed

		if !withSerials {
			continue
		}
		// a serial repeated in this line, or already held by an earlier
		// line, does not account for another unit
		mine := 0
		for _, sn := range l.SerialNumbers {
			if _, ok := owned[sn]; !ok {
				continue
			}
			if _, dup := u.assigned[sn]; dup {
				continue
			}
			u.assigned[sn] = struct{}{}
			mine++
		}
		if mine != consumed {
			u.incomplete = true
			u.warnings = append(u.warnings, model.Warning{
				Kind:      model.DataIntegrityWarning,
				BookingID: l.BookingID,
				LineID:    l.ID,
				Message:   fmt.Sprintf("line holds %d unit(s) of product %d but names %d of its serials", consumed, productID, mine),
			})
		}
	}
	return u, nil
}

// requiredPerBundle is how many units of productID one bundle consumes; zero
// when the bundle no longer exists or does not contain the product.
func (e *engine) requiredPerBundle(ctx context.Context, bundleID, productID int64) (int, error) {
	b, err := e.bundles.GetBundle(ctx, bundleID)
	if err != nil || b == nil {
		return 0, err
	}
	n := 0
	for _, c := range b.Components {
		if c.ProductID == productID && c.RequiredQuantity > 0 {
			n += c.RequiredQuantity
		}
	}
	return n, nil
}
