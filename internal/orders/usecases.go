// Package orders places orders atomically and serves the order resources.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/logging"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

const (
	instrumentationName = "github.com/matheusmosca/commerce-orders/internal/orders"

	DefaultPlacementTimeout = 10 * time.Second
	maxOrderNumberAttempts  = 5
)

var errOrderNumberExhausted = errors.New("could not generate a unique order number")

// StockStore applies the conditional stock adjustment inside a Tx.
type StockStore interface {
	AdjustStock(ctx context.Context, tx store.Tx, productID int64, delta int) (*domain.Product, error)
}

// Ledger appends inventory history entries inside a Tx.
type Ledger interface {
	AppendEntry(ctx context.Context, tx store.Tx, entry *domain.LedgerEntry) error
}

// Repository define a interface para persistência de pedidos
type Repository interface {
	OrderNumberExists(ctx context.Context, tx store.Tx, orderNumber string) (bool, error)
	Create(ctx context.Context, tx store.Tx, order *domain.Order) error
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)
}

// PlaceOrderRequest representa a requisição para criar um pedido
type PlaceOrderRequest struct {
	CustomerID      int64             `json:"customer_id"`
	Items           []domain.LineItem `json:"items"`
	ShippingAddress string            `json:"shipping_address"`
	Notes           string            `json:"notes"`
	PaymentMethod   string            `json:"payment_method"`
}

// Option customizes an OrderUseCase.
type Option func(*OrderUseCase)

func WithTracer(tracer trace.Tracer) Option {
	return func(uc *OrderUseCase) { uc.tracer = tracer }
}

func WithMeter(meter metric.Meter) Option {
	return func(uc *OrderUseCase) { uc.meter = meter }
}

// WithPlacementTimeout bounds the whole placement transaction.
func WithPlacementTimeout(d time.Duration) Option {
	return func(uc *OrderUseCase) {
		if d > 0 {
			uc.placementTimeout = d
		}
	}
}

func WithOrderNumbers(fn OrderNumberFunc) Option {
	return func(uc *OrderUseCase) { uc.orderNumber = fn }
}

// OrderUseCase contém a lógica de negócio dos pedidos
type OrderUseCase struct {
	txBeginner store.TxBeginner
	stock      StockStore
	ledger     Ledger
	repository Repository
	logger     *zap.Logger

	tracer           trace.Tracer
	meter            metric.Meter
	metrics          *placementMetrics
	placementTimeout time.Duration
	orderNumber      OrderNumberFunc
	now              func() time.Time
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(
	txBeginner store.TxBeginner,
	stock StockStore,
	ledger Ledger,
	repository Repository,
	logger *zap.Logger,
	opts ...Option,
) (*OrderUseCase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &OrderUseCase{
		txBeginner:       txBeginner,
		stock:            stock,
		ledger:           ledger,
		repository:       repository,
		logger:           logger,
		tracer:           otel.Tracer(instrumentationName),
		meter:            otel.Meter(instrumentationName),
		placementTimeout: DefaultPlacementTimeout,
		orderNumber:      NewOrderNumber,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}

	m, err := newPlacementMetrics(uc.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create placement metrics: %w", err)
	}
	uc.metrics = m

	return uc, nil
}

// PlaceOrder validates stock, decrements it, and persists the order, its items
// and one sale ledger entry per item in a single transaction. Nothing is kept
// when any step fails.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (order *domain.Order, err error) {
	start := uc.now()
	ctx, span := uc.tracer.Start(ctx, "orders.place_order", trace.WithAttributes(
		attribute.Int64("order.customer_id", req.CustomerID),
		attribute.Int("order.line_items", len(req.Items)),
	))
	defer func() {
		uc.observePlacement(ctx, span, req, order, err, uc.now().Sub(start))
		span.End()
	}()

	if req.CustomerID <= 0 {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "must be a positive id"}
	}
	if err := domain.ValidateLineItems(req.Items); err != nil {
		return nil, err
	}
	// ascending product id keeps row-lock acquisition order identical across placements
	items := domain.SortLineItems(req.Items)

	txCtx, cancel := context.WithTimeout(ctx, uc.placementTimeout)
	defer cancel()

	tx, err := uc.txBeginner.BeginTx(txCtx)
	if err != nil {
		return nil, domain.WrapStoreError("begin", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	orderNumber, err := uc.reserveOrderNumber(txCtx, tx)
	if err != nil {
		return nil, err
	}

	order = domain.NewOrder(orderNumber, req.CustomerID, req.ShippingAddress, req.Notes, req.PaymentMethod)
	for _, item := range items {
		product, err := uc.stock.AdjustStock(txCtx, tx, item.ProductID, -item.Quantity)
		if err != nil {
			return nil, domain.WrapStoreError("adjust stock", err)
		}
		order.AddItem(domain.NewOrderItem(product.ID, product.Name, item.Quantity, product.Price))
	}

	if err := uc.repository.Create(txCtx, tx, order); err != nil {
		return nil, domain.WrapStoreError("create order", err)
	}

	for _, item := range order.Items {
		if err := uc.ledger.AppendEntry(txCtx, tx, domain.NewSaleEntry(item.ProductID, item.Quantity, order.ID)); err != nil {
			return nil, domain.WrapStoreError("append ledger entry", err)
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.WrapStoreError("commit", err)
	}

	return order, nil
}

func (uc *OrderUseCase) reserveOrderNumber(ctx context.Context, tx store.Tx) (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		candidate := uc.orderNumber(uc.now())
		exists, err := uc.repository.OrderNumberExists(ctx, tx, candidate)
		if err != nil {
			return "", domain.WrapStoreError("check order number", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &domain.StoreError{Op: "generate order number", Err: errOrderNumberExhausted}
}

func (uc *OrderUseCase) observePlacement(
	ctx context.Context,
	span trace.Span,
	req PlaceOrderRequest,
	order *domain.Order,
	err error,
	elapsed time.Duration,
) {
	outcome := domain.Kind(err)
	uc.metrics.record(ctx, outcome, elapsed)

	logger := logging.ForSpan(ctx, uc.logger)
	span.SetAttributes(attribute.String("order.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		fields := []zap.Field{
			zap.String("outcome", outcome),
			zap.Int64("customer_id", req.CustomerID),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		}
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			fields = append(fields,
				zap.Int64("product_id", stockErr.ProductID),
				zap.Int("requested", stockErr.Requested),
				zap.Int("available", stockErr.Available),
			)
		}
		if domain.IsRetryable(err) {
			logger.Error("order_placement_failed", fields...)
		} else {
			logger.Warn("order_placement_failed", fields...)
		}
		return
	}

	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.String("order.total", order.Total.String()),
	)
	logger.Info("order_placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.String()),
		zap.Duration("duration", elapsed),
	)
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, &domain.ValidationError{Field: "id", Reason: "must be a positive id"}
	}
	order, err := uc.repository.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	orders, err := uc.repository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus validates rawStatus against the fixed set. Any status may follow any other.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, rawStatus string) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, &domain.ValidationError{Field: "id", Reason: "must be a positive id"}
	}
	status, err := domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	order, err := uc.repository.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	logging.ForSpan(ctx, uc.logger).Info("order_status_updated",
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
	)
	return order, nil
}
