package orders

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

// MockTx simula uma transação
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTxBeginner struct {
	mock.Mock
}

func (m *MockTxBeginner) BeginTx(ctx context.Context) (store.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(store.Tx)
	return tx, args.Error(1)
}

type MockStockStore struct {
	mock.Mock
}

func (m *MockStockStore) AdjustStock(ctx context.Context, tx store.Tx, productID int64, delta int) (*domain.Product, error) {
	args := m.Called(ctx, tx, productID, delta)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AppendEntry(ctx context.Context, tx store.Tx, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) OrderNumberExists(ctx context.Context, tx store.Tx, orderNumber string) (bool, error) {
	args := m.Called(ctx, tx, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, tx store.Tx, order *domain.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}
