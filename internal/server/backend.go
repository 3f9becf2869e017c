package server

import (
	"github.com/matheusmosca/commerce-orders/internal/catalog"
	"github.com/matheusmosca/commerce-orders/internal/inventory"
	"github.com/matheusmosca/commerce-orders/internal/orders"
	"github.com/matheusmosca/commerce-orders/internal/store"
	"github.com/matheusmosca/commerce-orders/internal/store/memory"
	"github.com/matheusmosca/commerce-orders/internal/store/postgres"
)

// StockStore is satisfied by both store implementations.
type StockStore interface {
	orders.StockStore
	inventory.StockStore
}

// Ledger is satisfied by both store implementations.
type Ledger interface {
	orders.Ledger
	inventory.Ledger
}

// Backend groups the store collaborators of one storage implementation.
type Backend struct {
	TxBeginner store.TxBeginner
	Pinger     store.Pinger
	Stock      StockStore
	Ledger     Ledger
	Orders     orders.Repository
	Catalog    catalog.Store
}

func NewPostgresBackend(db *postgres.DB) Backend {
	return Backend{
		TxBeginner: db,
		Pinger:     db,
		Stock:      postgres.NewStockStore(db),
		Ledger:     postgres.NewLedger(db),
		Orders:     postgres.NewOrderRepository(db),
		Catalog:    postgres.NewCatalog(db),
	}
}

func NewMemoryBackend(s *memory.Store) Backend {
	return Backend{
		TxBeginner: s,
		Pinger:     s,
		Stock:      memory.NewStockStore(s),
		Ledger:     memory.NewLedger(s),
		Orders:     memory.NewOrderRepository(s),
		Catalog:    memory.NewCatalog(s),
	}
}
