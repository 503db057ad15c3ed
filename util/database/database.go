package database

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// DB holds the pgx pool and a database/sql handle backed by the same pool.
// Repositories take SQL; Pool is used for health checks.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return &DB{Pool: p, SQL: stdlib.OpenDBFromPool(p)}, nil
}

func (d *DB) Close() {
	_ = d.SQL.Close()
	d.Pool.Close()
}
