// Package postgres is the PostgreSQL backend built on pgxpool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

// Options configures the connection pool.
type Options struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnectAttempts int
	RetryInterval   time.Duration
}

// DB is the process-wide store handle. It is created at startup and closed on shutdown.
type DB struct {
	pool *pgxpool.Pool
}

// Open creates the pool and waits for the database to accept connections.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	for i := 0; i < attempts; i++ {
		if err = pool.Ping(ctx); err == nil {
			logger.Info("database_connected", zap.Int32("max_conns", config.MaxConns))
			return &DB{pool: pool}, nil
		}
		logger.Warn("database_waiting",
			zap.Int("attempt", i+1),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// PostgresTx implementa a interface store.Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return translate("commit", err)
	}
	return nil
}

func (t *PostgresTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return store.ErrTxClosed
	}
	return err
}

// BeginTx inicia uma nova transação (READ COMMITTED; row locks serialize stock writes)
func (db *DB) BeginTx(ctx context.Context) (store.Tx, error) {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, translate("begin", err)
	}
	return &PostgresTx{tx: tx}, nil
}

func pgTx(tx store.Tx) (pgx.Tx, error) {
	t, ok := tx.(*PostgresTx)
	if !ok {
		return nil, &domain.StoreError{Op: "tx", Err: fmt.Errorf("foreign transaction %T", tx)}
	}
	return t.tx, nil
}
