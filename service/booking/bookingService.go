package bookingsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	"github.com/Ahmadfnugroho/gpr-sub003/service/availability"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadInput          ErrCode = "BAD_INPUT"
	ErrNoStock           ErrCode = "NO_STOCK"
	ErrSerialUnavailable ErrCode = "SERIAL_UNAVAILABLE"
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrBadTransition     ErrCode = "BAD_TRANSITION"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return string(e.code) + ": " + e.msg }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	GetBooking(ctx context.Context, bookingID int64) (*model.Booking, error)
	LockProducts(ctx context.Context, tx *sql.Tx, productIDs []int64) error
	InsertBooking(ctx context.Context, tx *sql.Tx, b *model.Booking) (int64, error)
	GetStatusForUpdate(ctx context.Context, tx *sql.Tx, bookingID int64) (model.BookingStatus, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, bookingID int64, status model.BookingStatus) error
}

type BundleRepo interface {
	GetBundle(ctx context.Context, bundleID int64) (*model.Bundle, error)
}

type BookingReader interface {
	GetBooking(ctx context.Context, bookingID int64) (*model.Booking, error)
}

// Readers are the stores a reservation check reads from. They are bound to
// the writing transaction, so the check runs on the connection that holds
// the product locks.
type Readers struct {
	Engine   availability.Engine
	Bundles  BundleRepo
	Bookings BookingReader
}

type ReadersFunc func(tx *sql.Tx) Readers

type CreateReq struct {
	StartDate time.Time
	EndDate   time.Time
	Status    model.BookingStatus
	Lines     []model.BookingLine
}

type Service interface {
	// Create records a booking. Bookings that hold stock are checked against
	// current availability while the affected products are locked.
	Create(ctx context.Context, req CreateReq) (*model.Booking, error)

	// UpdateStatus moves a booking along its lifecycle.
	UpdateStatus(ctx context.Context, bookingID int64, status model.BookingStatus) error

	Get(ctx context.Context, bookingID int64) (*model.Booking, error)
}

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:  {model.BookingBooked, model.BookingCancel},
	model.BookingBooked:   {model.BookingPaid, model.BookingCancel},
	model.BookingPaid:     {model.BookingOnRented, model.BookingCancel},
	model.BookingOnRented: {model.BookingDone},
}

type service struct {
	db      *sql.DB
	r       Repo
	readers ReadersFunc
}

func New(db *sql.DB, r Repo, readers ReadersFunc) Service {
	return &service{db: db, r: r, readers: readers}
}

func (s *service) Create(ctx context.Context, req CreateReq) (_ *model.Booking, err error) {
	if req.Status == "" {
		req.Status = model.BookingBooked
	}
	switch req.Status {
	case model.BookingPending, model.BookingBooked, model.BookingPaid, model.BookingOnRented:
	default:
		return nil, makeErr(ErrBadInput, "cannot create a booking in status %q", req.Status)
	}
	if req.StartDate.After(req.EndDate) {
		return nil, makeErr(ErrBadInput, "start_date is after end_date")
	}
	if err := validateLines(req.Lines); err != nil {
		return nil, err
	}

	b := &model.Booking{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
		Lines:     req.Lines,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if b.Status.IsActive() {
		if err = s.reserve(ctx, tx, s.readers(tx), model.Range{Start: b.StartDate, End: b.EndDate}, b.Lines); err != nil {
			return nil, err
		}
	}
	if _, err = s.r.InsertBooking(ctx, tx, b); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) UpdateStatus(ctx context.Context, bookingID int64, next model.BookingStatus) (err error) {
	if !next.Valid() {
		return makeErr(ErrBadInput, "unknown status %q", next)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := s.r.GetStatusForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound, "booking %d", bookingID)
		}
		return err
	}
	if !allowed(cur, next) {
		return makeErr(ErrBadTransition, "%s -> %s", cur, next)
	}

	if !cur.IsActive() && next.IsActive() {
		rd := s.readers(tx)
		b, err := rd.Bookings.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return makeErr(ErrNotFound, "booking %d", bookingID)
		}
		if err := s.reserve(ctx, tx, rd, model.Range{Start: b.StartDate, End: b.EndDate}, b.Lines); err != nil {
			return err
		}
	}

	if err = s.r.UpdateStatus(ctx, tx, bookingID, next); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Get(ctx context.Context, bookingID int64) (*model.Booking, error) {
	b, err := s.r.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound, "booking %d", bookingID)
	}
	return b, nil
}

func allowed(from, to model.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func validateLines(lines []model.BookingLine) error {
	if len(lines) == 0 {
		return makeErr(ErrBadInput, "booking has no lines")
	}
	seen := map[string]struct{}{}
	for i, l := range lines {
		if !l.Target.Valid() {
			return makeErr(ErrBadInput, "line %d: %v", i, model.ErrInvalidTarget)
		}
		if l.Quantity < 1 {
			return makeErr(ErrBadInput, "line %d: quantity must be at least 1", i)
		}
		if l.Target.Kind == model.TargetProduct && len(l.SerialNumbers) > l.Quantity {
			return makeErr(ErrBadInput, "line %d: %d serials for quantity %d", i, len(l.SerialNumbers), l.Quantity)
		}
		for _, sn := range l.SerialNumbers {
			if _, dup := seen[sn]; dup {
				return makeErr(ErrBadInput, "serial %s assigned twice", sn)
			}
			seen[sn] = struct{}{}
		}
	}
	return nil
}

// reserve checks that lines fit into what is free over rng. It must run in
// the transaction that will write the booking: the advisory locks it takes
// are released on commit or rollback.
func (s *service) reserve(ctx context.Context, tx *sql.Tx, rd Readers, rng model.Range, lines []model.BookingLine) error {
	need, candidates, err := demand(ctx, rd.Bundles, lines)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := s.r.LockProducts(ctx, tx, ids); err != nil {
		return err
	}

	free := map[string]struct{}{}
	for _, id := range ids {
		res, err := rd.Engine.ComputeProductAvailability(ctx, id, rng, availability.Options{Serials: true})
		if err != nil {
			if availability.Code(err) == availability.ErrEntityNotFound {
				return makeErr(ErrBadInput, "product %d does not exist", id)
			}
			return err
		}
		if res.AvailableUnits < need[id] {
			return makeErr(ErrNoStock, "product %d: need %d, available %d", id, need[id], res.AvailableUnits)
		}
		for _, sn := range res.AvailableSerialNumbers {
			free[fmt.Sprintf("%d/%s", id, sn)] = struct{}{}
		}
	}

	for i, l := range lines {
	serials:
		for _, sn := range l.SerialNumbers {
			for _, pid := range candidates[i] {
				if _, ok := free[fmt.Sprintf("%d/%s", pid, sn)]; ok {
					continue serials
				}
			}
			return makeErr(ErrSerialUnavailable, "serial %s is not free for line %d", sn, i)
		}
	}
	return nil
}

// demand expands lines into units needed per product, plus the products each
// line's serials may belong to.
func demand(ctx context.Context, bundles BundleRepo, lines []model.BookingLine) (map[int64]int, [][]int64, error) {
	need := map[int64]int{}
	candidates := make([][]int64, len(lines))
	for i, l := range lines {
		if l.Target.Kind == model.TargetProduct {
			need[l.Target.ID] += l.Quantity
			candidates[i] = []int64{l.Target.ID}
			continue
		}
		b, err := bundles.GetBundle(ctx, l.Target.ID)
		if err != nil {
			return nil, nil, err
		}
		if b == nil {
			return nil, nil, makeErr(ErrBadInput, "bundle %d does not exist", l.Target.ID)
		}
		if len(b.Components) == 0 {
			return nil, nil, makeErr(ErrNoStock, "bundle %d has no components", b.ID)
		}
		for _, c := range b.Components {
			if c.RequiredQuantity < 1 {
				return nil, nil, makeErr(ErrBadInput, "bundle %d requires %d of product %d", b.ID, c.RequiredQuantity, c.ProductID)
			}
			need[c.ProductID] += l.Quantity * c.RequiredQuantity
			candidates[i] = append(candidates[i], c.ProductID)
		}
	}
	return need, candidates, nil
}
