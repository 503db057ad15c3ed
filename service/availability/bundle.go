package availability

import (
	"context"
	"fmt"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
)

// ComputeBundleAvailability answers how many whole bundles can be rented over
// rng: the minimum over components of floor(available / required).
func (e *engine) ComputeBundleAvailability(ctx context.Context, bundleID int64, rng model.Range, opts Options) (*model.AvailabilityResult, error) {
	if err := rng.Validate(); err != nil {
		return nil, wrap(ErrInvalidRange, err)
	}
	b, err := e.bundles.GetBundle(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrEntityNotFound, "bundle %d", bundleID)
	}

	res := &model.AvailabilityResult{
		EntityID:   bundleID,
		EntityType: model.EntityBundle,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
	}
	comps, err := mergeComponents(b)
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return res, nil
	}

	per := make([]*model.AvailabilityResult, len(comps))
	g, gctx := e.group(ctx)
	for i, c := range comps {
		g.Go(func() error {
			r, err := e.ComputeProductAvailability(gctx, c.ProductID, rng, Options{Serials: opts.Serials})
			if err != nil {
				return fmt.Errorf("bundle %d component %d: %w", bundleID, c.ProductID, err)
			}
			per[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Components = make([]model.ComponentAvailability, len(comps))
	for i, c := range comps {
		ca := model.ComponentAvailability{
			ProductID:              c.ProductID,
			RequiredQuantity:       c.RequiredQuantity,
			TotalUnits:             per[i].TotalUnits,
			AvailableUnits:         per[i].AvailableUnits,
			MaxBundles:             per[i].AvailableUnits / c.RequiredQuantity,
			AvailableSerialNumbers: per[i].AvailableSerialNumbers,
		}
		res.Components[i] = ca
		res.SerialDetailIncomplete = res.SerialDetailIncomplete || per[i].SerialDetailIncomplete
		res.Warnings = append(res.Warnings, per[i].Warnings...)

		maxTotal := ca.TotalUnits / c.RequiredQuantity
		if i == 0 || ca.MaxBundles < res.AvailableUnits {
			res.AvailableUnits = ca.MaxBundles
			pid := c.ProductID
			res.LimitingComponent = &pid
		}
		if i == 0 || maxTotal < res.TotalUnits {
			res.TotalUnits = maxTotal
		}
	}
	return res, nil
}

// mergeComponents rejects non-positive quantities and folds repeated products
// into one component, keeping first-seen order.
func mergeComponents(b *model.Bundle) ([]model.BundleComponent, error) {
	out := make([]model.BundleComponent, 0, len(b.Components))
	idx := make(map[int64]int, len(b.Components))
	for _, c := range b.Components {
		if c.RequiredQuantity < 1 {
			return nil, makeErr(ErrInvalidBundle, "bundle %d requires %d of product %d", b.ID, c.RequiredQuantity, c.ProductID)
		}
		if i, ok := idx[c.ProductID]; ok {
			out[i].RequiredQuantity += c.RequiredQuantity
			continue
		}
		idx[c.ProductID] = len(out)
		out = append(out, c)
	}
	return out, nil
}
