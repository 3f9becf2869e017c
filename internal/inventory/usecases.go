// Package inventory handles manual stock adjustments and the ledger read side.
package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/logging"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

type StockStore interface {
	AdjustStock(ctx context.Context, tx store.Tx, productID int64, delta int) (*domain.Product, error)
}

type Ledger interface {
	AppendEntry(ctx context.Context, tx store.Tx, entry *domain.LedgerEntry) error
	ListEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)
}

const DefaultAdjustmentTimeout = 10 * time.Second

// Option customizes an InventoryUseCase.
type Option func(*InventoryUseCase)

// WithAdjustmentTimeout bounds the manual adjustment transaction.
func WithAdjustmentTimeout(d time.Duration) Option {
	return func(uc *InventoryUseCase) {
		if d > 0 {
			uc.adjustmentTimeout = d
		}
	}
}

// InventoryUseCase contém a lógica de negócio do inventário
type InventoryUseCase struct {
	txBeginner store.TxBeginner
	stock      StockStore
	ledger     Ledger
	logger     *zap.Logger

	adjustmentTimeout time.Duration
}

// NewInventoryUseCase cria uma nova instância de InventoryUseCase
func NewInventoryUseCase(txBeginner store.TxBeginner, stock StockStore, ledger Ledger, logger *zap.Logger, opts ...Option) *InventoryUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &InventoryUseCase{
		txBeginner:        txBeginner,
		stock:             stock,
		ledger:            ledger,
		logger:            logger,
		adjustmentTimeout: DefaultAdjustmentTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AdjustProductStock applies delta with the same conditional primitive used by
// order placement and records one ledger entry without a reference.
func (uc *InventoryUseCase) AdjustProductStock(ctx context.Context, productID int64, delta int, reason string) (*domain.Product, error) {
	if productID <= 0 {
		return nil, &domain.ValidationError{Field: "id", Reason: "must be a positive id"}
	}
	if err := domain.ValidateStockChange(delta); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.adjustmentTimeout)
	defer cancel()

	tx, err := uc.txBeginner.BeginTx(txCtx)
	if err != nil {
		return nil, domain.WrapStoreError("begin", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	product, err := uc.stock.AdjustStock(txCtx, tx, productID, delta)
	if err != nil {
		return nil, domain.WrapStoreError("adjust stock", err)
	}

	entry := domain.NewAdjustmentEntry(productID, delta, reason)
	if err := uc.ledger.AppendEntry(txCtx, tx, entry); err != nil {
		return nil, domain.WrapStoreError("append ledger entry", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.WrapStoreError("commit", err)
	}

	logging.ForSpan(ctx, uc.logger).Info("stock_adjusted",
		zap.Int64("product_id", productID),
		zap.Int("change", delta),
		zap.String("reason", entry.Reason),
		zap.Int("stock", product.Stock),
	)
	return product, nil
}

// History returns the ledger entries of one product in append order.
func (uc *InventoryUseCase) History(ctx context.Context, productID int64) ([]domain.LedgerEntry, error) {
	if productID <= 0 {
		return nil, &domain.ValidationError{Field: "id", Reason: "must be a positive id"}
	}
	entries, err := uc.ledger.ListEntries(ctx, domain.LedgerFilter{ProductID: &productID})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory history: %w", err)
	}
	return entries, nil
}
