package itemrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	"github.com/Ahmadfnugroho/gpr-sub003/util/database"
)

type Repo interface {
	// Products
	CreateProduct(ctx context.Context, name string, price float64) (int64, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)

	// Serialized items
	AddItems(ctx context.Context, productID int64, serials []string) (int64, error)
	ListItems(ctx context.Context, productID int64) ([]model.SerializedItem, error)
	SetAvailable(ctx context.Context, itemID int64, available bool) (bool, error)
	CountItems(ctx context.Context, productID int64) (int, error)
	ListSerials(ctx context.Context, productID int64) ([]string, error)

	WithTx(tx *sql.Tx) Repo
}

type repo struct {
	db *sql.DB
	q  database.Querier
}

func New(db *sql.DB) Repo { return &repo{db: db, q: db} }

// WithTx returns a Repo whose queries run on tx.
func (r *repo) WithTx(tx *sql.Tx) Repo { return &repo{db: r.db, q: tx} }

func (r *repo) CreateProduct(ctx context.Context, name string, price float64) (int64, error) {
	const q = `
INSERT INTO products (name, price)
VALUES ($1,$2)
RETURNING id`
	var id int64
	if err := r.q.QueryRowContext(ctx, q, name, price).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ProductExists(ctx context.Context, productID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	var ok bool
	err := r.q.QueryRowContext(ctx, q, productID).Scan(&ok)
	return ok, err
}

func (r *repo) AddItems(ctx context.Context, productID int64, serials []string) (n int64, err error) {
	if len(serials) == 0 {
		return 0, errors.New("no serials")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	const ins = `INSERT INTO product_items (product_id, serial_number, is_available) VALUES ($1,$2,TRUE)`
	for _, sn := range serials {
		if _, err = tx.ExecContext(ctx, ins, productID, sn); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(serials)), nil
}

func (r *repo) ListItems(ctx context.Context, productID int64) ([]model.SerializedItem, error) {
	const q = `
SELECT id, product_id, serial_number, is_available, deleted_at
FROM product_items
WHERE product_id = $1
ORDER BY serial_number`
	rows, err := r.q.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SerializedItem
	for rows.Next() {
		var it model.SerializedItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.SerialNumber, &it.IsAvailable, &it.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) SetAvailable(ctx context.Context, itemID int64, available bool) (bool, error) {
	const q = `
UPDATE product_items
SET is_available = $2
WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.q.ExecContext(ctx, q, itemID, available)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Stock counts skip soft deleted units and do not consult is_available.

func (r *repo) CountItems(ctx context.Context, productID int64) (int, error) {
	const q = `
SELECT COUNT(*)
FROM product_items
WHERE product_id = $1 AND deleted_at IS NULL`
	var n int
	err := r.q.QueryRowContext(ctx, q, productID).Scan(&n)
	return n, err
}

func (r *repo) ListSerials(ctx context.Context, productID int64) ([]string, error) {
	const q = `
SELECT serial_number
FROM product_items
WHERE product_id = $1 AND deleted_at IS NULL
ORDER BY serial_number`
	rows, err := r.q.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var sn string
		if err := rows.Scan(&sn); err != nil {
			return nil, err
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}
