package bundlerepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	"github.com/Ahmadfnugroho/gpr-sub003/util/database"
)

type Repo interface {
	CreateBundle(ctx context.Context, b *model.Bundle) (int64, error)
	// GetBundle returns nil, nil when the bundle does not exist.
	GetBundle(ctx context.Context, bundleID int64) (*model.Bundle, error)

	WithTx(tx *sql.Tx) Repo
}

type repo struct {
	db *sql.DB
	q  database.Querier
}

func New(db *sql.DB) Repo { return &repo{db: db, q: db} }

// WithTx returns a Repo whose queries run on tx.
func (r *repo) WithTx(tx *sql.Tx) Repo { return &repo{db: r.db, q: tx} }

func (r *repo) CreateBundle(ctx context.Context, b *model.Bundle) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const ins = `
INSERT INTO bundlings (name, price)
VALUES ($1,$2)
RETURNING id`
	if err = tx.QueryRowContext(ctx, ins, b.Name, b.Price).Scan(&id); err != nil {
		return 0, err
	}

	const insComp = `
INSERT INTO bundling_products (bundling_id, product_id, required_quantity, position)
VALUES ($1,$2,$3,$4)`
	for i, c := range b.Components {
		if _, err = tx.ExecContext(ctx, insComp, id, c.ProductID, c.RequiredQuantity, i); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	b.ID = id
	return id, nil
}

func (r *repo) GetBundle(ctx context.Context, bundleID int64) (*model.Bundle, error) {
	const q = `
SELECT id, name, price
FROM bundlings
WHERE id = $1`
	b := &model.Bundle{}
	err := r.q.QueryRowContext(ctx, q, bundleID).Scan(&b.ID, &b.Name, &b.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const qc = `
SELECT product_id, required_quantity
FROM bundling_products
WHERE bundling_id = $1
ORDER BY position, product_id`
	rows, err := r.q.QueryContext(ctx, qc, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b.Components = []model.BundleComponent{}
	for rows.Next() {
		var c model.BundleComponent
		if err := rows.Scan(&c.ProductID, &c.RequiredQuantity); err != nil {
			return nil, err
		}
		b.Components = append(b.Components, c)
	}
	return b, rows.Err()
}
