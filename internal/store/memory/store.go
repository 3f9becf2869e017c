// Package memory is a single-process backend used by tests and local runs.
// Transactions are serialized through a one-slot semaphore, so every unit of
// work observes committed state only and writes are undone on rollback.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

// Store holds every record set behind one transaction slot.
type Store struct {
	sem chan struct{}

	products  map[int64]*domain.Product
	customers map[int64]*domain.Customer
	orders    map[int64]*domain.Order
	items     map[int64][]domain.OrderItem
	ledger    []domain.LedgerEntry

	nextProductID  int64
	nextCustomerID int64
	nextOrderID    int64
	nextItemID     int64
	nextLedgerID   int64
}

// New cria um store vazio
func New() *Store {
	return &Store{
		sem:       make(chan struct{}, 1),
		products:  make(map[int64]*domain.Product),
		customers: make(map[int64]*domain.Customer),
		orders:    make(map[int64]*domain.Order),
		items:     make(map[int64][]domain.OrderItem),
	}
}

// BeginTx waits for the transaction slot or for ctx to end.
func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return &Tx{s: s}, nil
}

// Ping fails only when ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// AddProduct seeds a product and returns it with its assigned id.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.sem <- struct{}{}
	defer s.release()

	s.nextProductID++
	p.ID = s.nextProductID
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	stored := p
	s.products[p.ID] = &stored
	return p
}

// AddCustomer seeds a customer and returns it with its assigned id.
func (s *Store) AddCustomer(c domain.Customer) domain.Customer {
	s.sem <- struct{}{}
	defer s.release()

	return s.insertCustomer(c)
}

func (s *Store) insertCustomer(c domain.Customer) domain.Customer {
	s.nextCustomerID++
	c.ID = s.nextCustomerID
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	stored := c
	s.customers[c.ID] = &stored
	return c
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return &domain.StoreError{Op: "begin", Err: ctx.Err()}
	}
}

func (s *Store) release() {
	<-s.sem
}

// view runs fn holding the slot, for reads and single-statement writes outside a Tx.
func (s *Store) view(ctx context.Context, fn func() error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return fn()
}

// Tx is the memory unit of work. Writes register undo steps replayed on rollback.
type Tx struct {
	s      *Store
	undo   []func()
	closed bool
}

func (t *Tx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

// Commit keeps the writes. An expired context aborts instead, like a database would.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return store.ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		t.rollback()
		return &domain.StoreError{Op: "commit", Err: err}
	}
	t.closed = true
	t.undo = nil
	t.s.release()
	return nil
}

// Rollback discards every write made through this Tx.
func (t *Tx) Rollback(context.Context) error {
	if t.closed {
		return store.ErrTxClosed
	}
	t.rollback()
	return nil
}

func (t *Tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.closed = true
	t.s.release()
}

func (s *Store) txFrom(ctx context.Context, tx store.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.s != s {
		return nil, &domain.StoreError{Op: "tx", Err: fmt.Errorf("foreign transaction %T", tx)}
	}
	if mt.closed {
		return nil, &domain.StoreError{Op: "tx", Err: store.ErrTxClosed}
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "tx", Err: err}
	}
	return mt, nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	return &clone
}
