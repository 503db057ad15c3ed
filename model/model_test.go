package model_test

import (
	"testing"
	"time"

	"github.com/Ahmadfnugroho/gpr-sub003/model"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestRangeOverlaps(t *testing.T) {
	r := model.Range{Start: day(10), End: day(15)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", day(11), day(12), true},
		{"covering", day(1), day(20), true},
		{"ends on start", day(5), day(10), true},
		{"starts on end", day(15), day(18), true},
		{"before", day(1), day(9), false},
		{"after", day(16), day(20), false},
		{"one second before", day(5), day(10).Add(-time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, r.Overlaps(tc.start, tc.end))
		})
	}
}

func TestRangeValidate(t *testing.T) {
	require.NoError(t, model.Range{Start: day(1), End: day(1)}.Validate())
	require.ErrorIs(t, model.Range{Start: day(2), End: day(1)}.Validate(), model.ErrInvalidRange)
}

func TestBookingStatusIsActive(t *testing.T) {
	active := []model.BookingStatus{model.BookingBooked, model.BookingPaid, model.BookingOnRented}
	for _, s := range active {
		require.True(t, s.IsActive(), s)
	}
	idle := []model.BookingStatus{model.BookingPending, model.BookingCancel, model.BookingDone, "unknown"}
	for _, s := range idle {
		require.False(t, s.IsActive(), s)
	}
}

func TestTargetFromColumns(t *testing.T) {
	p, b := int64(3), int64(7)

	tg, err := model.TargetFromColumns(&p, nil)
	require.NoError(t, err)
	require.Equal(t, model.ProductTarget(3), tg)

	tg, err = model.TargetFromColumns(nil, &b)
	require.NoError(t, err)
	require.Equal(t, model.BundleTarget(7), tg)

	_, err = model.TargetFromColumns(&p, &b)
	require.ErrorIs(t, err, model.ErrInvalidTarget)
	_, err = model.TargetFromColumns(nil, nil)
	require.ErrorIs(t, err, model.ErrInvalidTarget)

	pid, bid := model.BundleTarget(7).Columns()
	require.Nil(t, pid)
	require.Equal(t, int64(7), *bid)
}
