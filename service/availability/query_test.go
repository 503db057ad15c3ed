package availability_test

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	"github.com/Ahmadfnugroho/gpr-sub003/service/availability"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func batchStore() *store {
	q := rng(date(2024, 1, 10), date(2024, 1, 15))
	return newStore().
		addProduct(productA, "A1", "A2", "A3", "A4", "A5").
		addProduct(productB, "B1", "B2", "B3").
		addBundle(kit, model.BundleComponent{ProductID: productA, RequiredQuantity: 2}, model.BundleComponent{ProductID: productB, RequiredQuantity: 1}).
		book(1, model.BookingBooked, q.Start, q.End, model.ProductTarget(productA), 1, "A1").
		book(2, model.BookingPaid, q.Start, q.End, model.BundleTarget(kit), 1, "A2", "A3", "B1")
}

func TestCompute_Dispatch(t *testing.T) {
	svc := availability.New(engineFor(batchStore()), nil, 4)
	ctx := context.Background()
	q := rng(date(2024, 1, 11), date(2024, 1, 12))

	res, err := svc.Compute(ctx, model.EntityRef{Type: model.EntityProduct, ID: productA}, q, availability.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, res.AvailableUnits)

	res, err = svc.Compute(ctx, model.EntityRef{Type: model.EntityBundle, ID: kit}, q, availability.Options{})
	require.NoError(t, err)
	// A: 2/2 = 1, B: 2/1 = 2
	require.Equal(t, 1, res.AvailableUnits)

	_, err = svc.Compute(ctx, model.EntityRef{Type: "widget", ID: 1}, q, availability.Options{})
	require.Equal(t, availability.ErrInvalidEntity, availability.Code(err))

	_, err = svc.Compute(ctx, model.EntityRef{Type: model.EntityProduct, ID: productA}, rng(q.End, q.Start), availability.Options{})
	require.Equal(t, availability.ErrInvalidRange, availability.Code(err))
}

func TestComputeMultiple_MatchesIndependentCalls(t *testing.T) {
	ctx := context.Background()
	q := rng(date(2024, 1, 1), date(2024, 1, 31))
	refs := []model.EntityRef{
		{Type: model.EntityProduct, ID: productA},
		{Type: model.EntityBundle, ID: kit},
		{Type: model.EntityProduct, ID: productB},
		{Type: model.EntityProduct, ID: productA},
	}

	single := availability.New(engineFor(batchStore()), nil, 1)
	want := make([]*model.AvailabilityResult, len(refs))
	for i, ref := range refs {
		r, err := single.Compute(ctx, ref, q, availability.Options{Serials: true})
		require.NoError(t, err)
		want[i] = r
	}

	for _, limit := range []int{0, 1, 2, 8} {
		shuffled := append([]model.EntityRef(nil), refs...)
		perm := rand.Perm(len(shuffled))
		for i, j := range perm {
			shuffled[i] = refs[j]
		}

		got, err := availability.New(engineFor(batchStore()), nil, limit).ComputeMultiple(ctx, shuffled, q, availability.Options{Serials: true})
		require.NoError(t, err)
		require.Len(t, got, len(refs))
		for i, j := range perm {
			require.Equal(t, want[j], got[i], "limit=%d ref=%v", limit, shuffled[i])
		}
	}
}

func TestComputeMultiple_FailureNamesEntity(t *testing.T) {
	svc := availability.New(engineFor(batchStore()), nil, 2)
	_, err := svc.ComputeMultiple(context.Background(), []model.EntityRef{
		{Type: model.EntityProduct, ID: productA},
		{Type: model.EntityBundle, ID: 404},
	}, rng(date(2024, 1, 1), date(2024, 1, 2)), availability.Options{})
	require.Error(t, err)
	require.Equal(t, availability.ErrEntityNotFound, availability.Code(err))
	require.Contains(t, err.Error(), "bundle 404")
}

func TestComputeMultiple_Empty(t *testing.T) {
	svc := availability.New(engineFor(batchStore()), nil, 2)
	got, err := svc.ComputeMultiple(context.Background(), nil, rng(date(2024, 1, 1), date(2024, 1, 2)), availability.Options{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCompute_CacheHitAndFreshBypass(t *testing.T) {
	s := batchStore()
	c := newMapCache()
	svc := availability.New(engineFor(s), c, 2)
	ctx := context.Background()
	ref := model.EntityRef{Type: model.EntityProduct, ID: productB}
	q := rng(date(2024, 1, 11), date(2024, 1, 12))

	first, err := svc.Compute(ctx, ref, q, availability.Options{})
	require.NoError(t, err)
	calls := s.calls

	second, err := svc.Compute(ctx, ref, q, availability.Options{})
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, calls, s.calls)

	s.book(3, model.BookingBooked, q.Start, q.End, model.ProductTarget(productB), 1)
	fresh, err := svc.Compute(ctx, ref, q, availability.Options{Fresh: true})
	require.NoError(t, err)
	require.Equal(t, first.AvailableUnits-1, fresh.AvailableUnits)

	// the fresh answer replaced the cached one
	again, err := svc.Compute(ctx, ref, q, availability.Options{})
	require.NoError(t, err)
	require.Same(t, fresh, again)
}

func TestCacheKey_DistinguishesInputs(t *testing.T) {
	q := rng(date(2024, 1, 1), date(2024, 1, 2))
	p := model.EntityRef{Type: model.EntityProduct, ID: 1}
	b := model.EntityRef{Type: model.EntityBundle, ID: 1}

	keys := map[string]struct{}{}
	for _, k := range []string{
		availability.CacheKey(p, q, false),
		availability.CacheKey(p, q, true),
		availability.CacheKey(b, q, false),
		availability.CacheKey(p, rng(q.Start, q.End.Add(time.Second)), false),
	} {
		keys[k] = struct{}{}
	}
	require.Len(t, keys, 4)
}

func TestRedisCache_UnreachableDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
		MaxRetries: -1,
	})
	defer rdb.Close()

	c := availability.NewRedisCache(rdb, time.Minute, nil)
	svc := availability.New(engineFor(batchStore()), c, 1)

	res, err := svc.Compute(context.Background(), model.EntityRef{Type: model.EntityProduct, ID: productB}, rng(date(2024, 1, 11), date(2024, 1, 12)), availability.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, res.AvailableUnits)

	_, ok := c.Get(context.Background(), "availability:missing")
	require.False(t, ok)
}
