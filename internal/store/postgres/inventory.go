package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

const productColumns = `id, name, price, stock, category, active, created_at, updated_at`

// StockStore adjusts products.stock inside a PostgresTx.
type StockStore struct {
	db *DB
}

func NewStockStore(db *DB) *StockStore {
	return &StockStore{db: db}
}

// AdjustStock applies delta in one conditional statement. The row lock taken
// by the UPDATE is held until the transaction ends, so concurrent decrements
// of the same product are serialized and none can drive stock below zero.
func (r *StockStore) AdjustStock(ctx context.Context, tx store.Tx, productID int64, delta int) (*domain.Product, error) {
	ptx, err := pgTx(tx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING ` + productColumns

	product, err := scanProduct(ptx.QueryRow(ctx, query, productID, delta))
	if err == nil {
		return product, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainMiss(ctx, ptx, productID, delta)
	}
	if pgErr, ok := pgError(err); ok && pgErr.Code == codeNumericOutOfRange {
		return nil, &domain.ValidationError{Field: "change", Reason: "stock would exceed the maximum"}
	}
	return nil, translate("adjust stock", err)
}

// explainMiss tells an unknown product apart from a short one.
func (r *StockStore) explainMiss(ctx context.Context, tx pgx.Tx, productID int64, delta int) error {
	var available int
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return translate("adjust stock", err)
	}
	return &domain.InsufficientStockError{
		ProductID: productID,
		Requested: -delta,
		Available: available,
	}
}

// Ledger writes and reads inventory_history.
type Ledger struct {
	db *DB
}

func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) AppendEntry(ctx context.Context, tx store.Tx, entry *domain.LedgerEntry) error {
	ptx, err := pgTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO inventory_history (product_id, change, reason, reference_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = ptx.QueryRow(ctx, query, entry.ProductID, entry.Change, entry.Reason, entry.ReferenceID).
		Scan(&entry.ID, &entry.CreatedAt)
	if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation {
		return &domain.NotFoundError{Resource: "product", ID: entry.ProductID}
	}
	return translate("append ledger entry", err)
}

// ListEntries returns matching entries in append order.
func (l *Ledger) ListEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, product_id, change, reason, reference_id, created_at
		FROM inventory_history
		WHERE ($1::bigint IS NULL OR product_id = $1)
		  AND ($2::bigint IS NULL OR reference_id = $2)
		ORDER BY id`

	rows, err := l.db.pool.Query(ctx, query, filter.ProductID, filter.ReferenceID)
	if err != nil {
		return nil, translate("list ledger entries", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Change, &e.Reason, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, translate("list ledger entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list ledger entries", err)
	}
	return entries, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
