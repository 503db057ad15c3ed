// util/database/migrate.go
package database

import (
	"context"
	"database/sql"
	"fmt"
)

const createProductsSQL = `
CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    price NUMERIC(12,2) NOT NULL DEFAULT 0
);`

const createProductItemsSQL = `
CREATE TABLE IF NOT EXISTS product_items (
    id BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES products(id),
    serial_number TEXT NOT NULL,
    is_available BOOLEAN NOT NULL DEFAULT TRUE,
    deleted_at TIMESTAMPTZ,
    CONSTRAINT product_items_serial_key UNIQUE (product_id, serial_number)
);`

const createBundlingsSQL = `
CREATE TABLE IF NOT EXISTS bundlings (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    price NUMERIC(12,2) NOT NULL DEFAULT 0
);`

const createBundlingProductsSQL = `
CREATE TABLE IF NOT EXISTS bundling_products (
    bundling_id BIGINT NOT NULL REFERENCES bundlings(id) ON DELETE CASCADE,
    product_id BIGINT NOT NULL REFERENCES products(id),
    required_quantity INTEGER NOT NULL CHECK (required_quantity >= 1),
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (bundling_id, product_id)
);`

const createBookingsSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    id BIGSERIAL PRIMARY KEY,
    start_date TIMESTAMPTZ NOT NULL,
    end_date TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (start_date <= end_date)
);`

const createBookingLinesSQL = `
CREATE TABLE IF NOT EXISTS booking_lines (
    id BIGSERIAL PRIMARY KEY,
    booking_id BIGINT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    product_id BIGINT REFERENCES products(id),
    bundling_id BIGINT REFERENCES bundlings(id),
    quantity INTEGER NOT NULL CHECK (quantity >= 1),
    serial_numbers JSONB NOT NULL DEFAULT '[]',
    CHECK ((product_id IS NULL) <> (bundling_id IS NULL))
);`

const createIndexesSQL = `
CREATE INDEX IF NOT EXISTS bookings_status_range_idx ON bookings (status, start_date, end_date);
CREATE INDEX IF NOT EXISTS booking_lines_product_idx ON booking_lines (product_id);
CREATE INDEX IF NOT EXISTS booking_lines_bundling_idx ON booking_lines (bundling_id);
CREATE INDEX IF NOT EXISTS bundling_products_product_idx ON bundling_products (product_id);`

var migrations = []struct {
	name string
	sql  string
}{
	{"products", createProductsSQL},
	{"product_items", createProductItemsSQL},
	{"bundlings", createBundlingsSQL},
	{"bundling_products", createBundlingProductsSQL},
	{"bookings", createBookingsSQL},
	{"booking_lines", createBookingLinesSQL},
	{"indexes", createIndexesSQL},
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	return nil
}
