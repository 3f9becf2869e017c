// Package store defines the unit of work shared by the persistence backends.
package store

import (
	"context"
	"errors"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("store: transaction already closed")

// Tx interface para transações. Repositories type-assert it to their backend's concrete type.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxBeginner opens a unit of work.
type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Pinger reports store liveness for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
