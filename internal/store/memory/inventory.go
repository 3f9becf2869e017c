package memory

import (
	"context"
	"sort"
	"time"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

// StockStore adjusts product stock inside a memory Tx.
type StockStore struct {
	s *Store
}

func NewStockStore(s *Store) *StockStore {
	return &StockStore{s: s}
}

// AdjustStock applies delta only when the result stays within [0, domain.MaxStock].
func (r *StockStore) AdjustStock(ctx context.Context, tx store.Tx, productID int64, delta int) (*domain.Product, error) {
	mt, err := r.s.txFrom(ctx, tx)
	if err != nil {
		return nil, err
	}

	product, ok := r.s.products[productID]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "product", ID: productID}
	}
	if delta > 0 && product.Stock > domain.MaxStock-delta {
		return nil, &domain.ValidationError{Field: "change", Reason: "stock would exceed the maximum"}
	}
	if delta < 0 && product.Stock+delta < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Requested: -delta,
			Available: product.Stock,
		}
	}

	previous := cloneProduct(product)
	mt.onRollback(func() { r.s.products[productID] = previous })

	updated := cloneProduct(product)
	updated.Stock += delta
	updated.UpdatedAt = time.Now().UTC()
	r.s.products[productID] = updated

	return cloneProduct(updated), nil
}

// Ledger is the append-only memory inventory history.
type Ledger struct {
	s *Store
}

func NewLedger(s *Store) *Ledger {
	return &Ledger{s: s}
}

// AppendEntry assigns the id and stores a copy of entry.
func (l *Ledger) AppendEntry(ctx context.Context, tx store.Tx, entry *domain.LedgerEntry) error {
	mt, err := l.s.txFrom(ctx, tx)
	if err != nil {
		return err
	}
	if _, ok := l.s.products[entry.ProductID]; !ok {
		return &domain.NotFoundError{Resource: "product", ID: entry.ProductID}
	}

	previousLen := len(l.s.ledger)
	previousID := l.s.nextLedgerID
	mt.onRollback(func() {
		l.s.ledger = l.s.ledger[:previousLen]
		l.s.nextLedgerID = previousID
	})

	l.s.nextLedgerID++
	entry.ID = l.s.nextLedgerID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	stored := *entry
	if entry.ReferenceID != nil {
		ref := *entry.ReferenceID
		stored.ReferenceID = &ref
	}
	l.s.ledger = append(l.s.ledger, stored)
	return nil
}

// ListEntries returns matching entries in append order.
func (l *Ledger) ListEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	out := []domain.LedgerEntry{}
	err := l.s.view(ctx, func() error {
		for _, e := range l.s.ledger {
			if filter.ProductID != nil && e.ProductID != *filter.ProductID {
				continue
			}
			if filter.ReferenceID != nil && (e.ReferenceID == nil || *e.ReferenceID != *filter.ReferenceID) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
