package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL CONSTRAINT products_price_check CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CONSTRAINT products_stock_check CHECK (stock >= 0),
		category TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		phone TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		order_number TEXT NOT NULL CONSTRAINT orders_order_number_key UNIQUE,
		customer_id BIGINT NOT NULL CONSTRAINT orders_customer_id_fkey REFERENCES customers(id),
		status TEXT NOT NULL DEFAULT 'pending' CONSTRAINT orders_status_check
			CHECK (status IN ('pending','confirmed','preparing','shipped','delivered','cancelled')),
		payment_status TEXT NOT NULL DEFAULT 'pending',
		total NUMERIC(12,2) NOT NULL CHECK (total >= 0),
		shipping_address TEXT,
		notes TEXT,
		payment_method TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,

	`CREATE TABLE IF NOT EXISTS inventory_history (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id),
		change INTEGER NOT NULL,
		reason TEXT NOT NULL,
		reference_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_history_product_id ON inventory_history(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_history_reference_id ON inventory_history(reference_id)`,

	// ledger rows are append-only
	`CREATE OR REPLACE FUNCTION inventory_history_append_only() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'inventory_history is append-only';
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS inventory_history_no_mutation ON inventory_history`,
	`CREATE TRIGGER inventory_history_no_mutation
		BEFORE UPDATE OR DELETE ON inventory_history
		FOR EACH ROW EXECUTE FUNCTION inventory_history_append_only()`,
}

// Migrate applies the schema through database/sql and lib/pq. Every statement is idempotent.
func Migrate(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	// serialize concurrent migrators
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock(72346001)`); err != nil {
		return fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock(72346001)`)

	for i, migration := range migrations {
		if _, err := conn.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i, err)
		}
	}
	return nil
}
