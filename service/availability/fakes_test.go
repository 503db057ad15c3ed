package availability_test

import (
	"context"
	"sync"
	"time"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
)

// store is an in-memory ledger implementing every repository the engine needs.
type store struct {
	mu       sync.Mutex
	serials  map[int64][]string
	bundles  map[int64]*model.Bundle
	lines    []model.LedgerLine
	nextLine int64

	itemsErr error
	linesErr error
	calls    int
}

func newStore() *store {
	return &store{serials: map[int64][]string{}, bundles: map[int64]*model.Bundle{}}
}

func (s *store) addProduct(id int64, serials ...string) *store {
	s.serials[id] = serials
	return s
}

func (s *store) addBundle(id int64, comps ...model.BundleComponent) *store {
	s.bundles[id] = &model.Bundle{ID: id, Name: "bundle", Components: comps}
	return s
}

func (s *store) book(bookingID int64, status model.BookingStatus, start, end time.Time, target model.Target, qty int, serials ...string) *store {
	s.nextLine++
	s.lines = append(s.lines, model.LedgerLine{
		BookingLine: model.BookingLine{
			ID:            s.nextLine,
			BookingID:     bookingID,
			Target:        target,
			Quantity:      qty,
			SerialNumbers: serials,
		},
		StartDate: start,
		EndDate:   end,
		Status:    status,
	})
	return s
}

func (s *store) ProductExists(ctx context.Context, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	_, ok := s.serials[productID]
	return ok, nil
}

func (s *store) CountItems(ctx context.Context, productID int64) (int, error) {
	if s.itemsErr != nil {
		return 0, s.itemsErr
	}
	return len(s.serials[productID]), nil
}

func (s *store) ListSerials(ctx context.Context, productID int64) ([]string, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return append([]string(nil), s.serials[productID]...), nil
}

// ListActiveLines returns every line unfiltered; the engine must filter.
func (s *store) ListActiveLines(ctx context.Context, productID int64, rng model.Range) ([]model.LedgerLine, error) {
	if s.linesErr != nil {
		return nil, s.linesErr
	}
	return append([]model.LedgerLine(nil), s.lines...), nil
}

func (s *store) GetBundle(ctx context.Context, bundleID int64) (*model.Bundle, error) {
	b, ok := s.bundles[bundleID]
	if !ok {
		return nil, nil
	}
	return b, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]*model.AvailabilityResult
	gets int
}

func newMapCache() *mapCache { return &mapCache{data: map[string]*model.AvailabilityResult{}} }

func (c *mapCache) Get(ctx context.Context, key string) (*model.AvailabilityResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	r, ok := c.data[key]
	return r, ok
}

func (c *mapCache) Set(ctx context.Context, key string, res *model.AvailabilityResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = res
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func rng(start, end time.Time) model.Range { return model.Range{Start: start, End: end} }
