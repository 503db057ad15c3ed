package bookingrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	"github.com/Ahmadfnugroho/gpr-sub003/util/database"
)

type Repo interface {
	// Ledger reads
	ListActiveLines(ctx context.Context, productID int64, rng model.Range) ([]model.LedgerLine, error)
	GetBooking(ctx context.Context, bookingID int64) (*model.Booking, error)

	// Writes, always inside the caller's transaction
	LockProducts(ctx context.Context, tx *sql.Tx, productIDs []int64) error
	InsertBooking(ctx context.Context, tx *sql.Tx, b *model.Booking) (int64, error)
	GetStatusForUpdate(ctx context.Context, tx *sql.Tx, bookingID int64) (model.BookingStatus, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, bookingID int64, status model.BookingStatus) error

	// Housekeeping
	CancelStalePending(ctx context.Context, createdBefore time.Time) (int64, error)

	WithTx(tx *sql.Tx) Repo
}

type repo struct {
	db *sql.DB
	q  database.Querier
}

func New(db *sql.DB) Repo { return &repo{db: db, q: db} }

// WithTx returns a Repo whose queries run on tx.
func (r *repo) WithTx(tx *sql.Tx) Repo { return &repo{db: r.db, q: tx} }

func (r *repo) ListActiveLines(ctx context.Context, productID int64, rng model.Range) ([]model.LedgerLine, error) {
	const q = `
		SELECT bl.id, bl.booking_id, bl.product_id, bl.bundling_id, bl.quantity, bl.serial_numbers,
			b.start_date, b.end_date, b.status
		FROM booking_lines bl
		JOIN bookings b ON b.id = bl.booking_id
		WHERE b.status IN ('booking', 'paid', 'on_rented')
		AND b.start_date <= $3
		AND b.end_date >= $2
		AND (
			bl.product_id = $1
			OR bl.bundling_id IN (SELECT bundling_id FROM bundling_products WHERE product_id = $1)
		)
		ORDER BY b.start_date, bl.id`
	rows, err := r.q.QueryContext(ctx, q, productID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerLine
	for rows.Next() {
		var (
			l                     model.LedgerLine
			productRef, bundleRef *int64
			serials               []byte
			status                string
		)
		if err := rows.Scan(&l.ID, &l.BookingID, &productRef, &bundleRef, &l.Quantity, &serials,
			&l.StartDate, &l.EndDate, &status); err != nil {
			return nil, err
		}
		if l.Target, err = model.TargetFromColumns(productRef, bundleRef); err != nil {
			return nil, fmt.Errorf("booking line %d: %w", l.ID, err)
		}
		if l.SerialNumbers, err = decodeSerials(serials); err != nil {
			return nil, fmt.Errorf("booking line %d: %w", l.ID, err)
		}
		l.Status = model.BookingStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) GetBooking(ctx context.Context, bookingID int64) (*model.Booking, error) {
	const q = `
		SELECT id, start_date, end_date, status, created_at
		FROM bookings
		WHERE id = $1`
	b := &model.Booking{}
	var status string
	err := r.q.QueryRowContext(ctx, q, bookingID).Scan(&b.ID, &b.StartDate, &b.EndDate, &status, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)

	const ql = `
		SELECT id, booking_id, product_id, bundling_id, quantity, serial_numbers
		FROM booking_lines
		WHERE booking_id = $1
		ORDER BY id`
	rows, err := r.q.QueryContext(ctx, ql, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l                     model.BookingLine
			productRef, bundleRef *int64
			serials               []byte
		)
		if err := rows.Scan(&l.ID, &l.BookingID, &productRef, &bundleRef, &l.Quantity, &serials); err != nil {
			return nil, err
		}
		if l.Target, err = model.TargetFromColumns(productRef, bundleRef); err != nil {
			return nil, fmt.Errorf("booking line %d: %w", l.ID, err)
		}
		if l.SerialNumbers, err = decodeSerials(serials); err != nil {
			return nil, fmt.Errorf("booking line %d: %w", l.ID, err)
		}
		b.Lines = append(b.Lines, l)
	}
	return b, rows.Err()
}

// LockProducts takes a transaction scoped advisory lock per product, in
// ascending id order so concurrent writers cannot deadlock.
func (r *repo) LockProducts(ctx context.Context, tx *sql.Tx, productIDs []int64) error {
	ids := append([]int64(nil), productIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	const q = `SELECT pg_advisory_xact_lock($1)`
	var last int64
	for i, id := range ids {
		if i > 0 && id == last {
			continue
		}
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
		last = id
	}
	return nil
}

func (r *repo) InsertBooking(ctx context.Context, tx *sql.Tx, b *model.Booking) (int64, error) {
	const q = `
		INSERT INTO bookings (start_date, end_date, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, q, b.StartDate, b.EndDate, string(b.Status)).Scan(&b.ID, &b.CreatedAt); err != nil {
		return 0, err
	}

	const ql = `
		INSERT INTO booking_lines (booking_id, product_id, bundling_id, quantity, serial_numbers)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range b.Lines {
		l := &b.Lines[i]
		if !l.Target.Valid() {
			return 0, model.ErrInvalidTarget
		}
		productRef, bundleRef := l.Target.Columns()
		serials, err := encodeSerials(l.SerialNumbers)
		if err != nil {
			return 0, err
		}
		if err := tx.QueryRowContext(ctx, ql, b.ID, productRef, bundleRef, l.Quantity, serials).Scan(&l.ID); err != nil {
			return 0, err
		}
		l.BookingID = b.ID
	}
	return b.ID, nil
}

func (r *repo) GetStatusForUpdate(ctx context.Context, tx *sql.Tx, bookingID int64) (model.BookingStatus, error) {
	const q = `
		SELECT status
		FROM bookings
		WHERE id = $1
		FOR UPDATE`
	var status string
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(&status)
	return model.BookingStatus(status), err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, bookingID int64, status model.BookingStatus) error {
	const q = `
		UPDATE bookings
		SET status = $2,
			updated_at = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookingID, string(status), time.Now().UTC())
	return err
}

// CancelStalePending cancels pending bookings created before the cutoff.
// Pending bookings hold no stock, so no product locks are needed.
func (r *repo) CancelStalePending(ctx context.Context, createdBefore time.Time) (int64, error) {
	const q = `
		UPDATE bookings
		SET status = 'cancel',
			updated_at = now()
		WHERE status = 'pending' AND created_at < $1`
	res, err := r.q.ExecContext(ctx, q, createdBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func decodeSerials(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("serial_numbers: %w", err)
	}
	return out, nil
}

func encodeSerials(serials []string) (string, error) {
	if serials == nil {
		serials = []string{}
	}
	b, err := json.Marshal(serials)
	return string(b), err
}
