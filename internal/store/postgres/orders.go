package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

const orderColumns = `id, order_number, customer_id, status, payment_status, total,
	COALESCE(shipping_address, ''), COALESCE(notes, ''), COALESCE(payment_method, ''),
	created_at, updated_at`

// OrderRepository persists orders and order_items.
type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) OrderNumberExists(ctx context.Context, tx store.Tx, orderNumber string) (bool, error) {
	ptx, err := pgTx(tx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = ptx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, orderNumber).Scan(&exists)
	if err != nil {
		return false, translate("check order number", err)
	}
	return exists, nil
}

// Create inserts the order row and its items, filling in generated ids and timestamps.
func (r *OrderRepository) Create(ctx context.Context, tx store.Tx, order *domain.Order) error {
	ptx, err := pgTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (order_number, customer_id, status, payment_status, total,
			shipping_address, notes, payment_method)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at, updated_at`

	err = ptx.QueryRow(ctx, query,
		order.OrderNumber,
		order.CustomerID,
		string(order.Status),
		string(order.PaymentStatus),
		order.Total,
		order.ShippingAddress,
		order.Notes,
		order.PaymentMethod,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation && pgErr.ConstraintName == constraintOrdersCustomer {
			return &domain.NotFoundError{Resource: "customer", ID: order.CustomerID}
		}
		return translate("create order", err)
	}

	if len(order.Items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
	}

	results := ptx.SendBatch(ctx, batch)
	for i := range order.Items {
		if err := results.QueryRow().Scan(&order.Items[i].ID); err != nil {
			results.Close()
			if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation {
				return &domain.NotFoundError{Resource: "product", ID: order.Items[i].ProductID}
			}
			return translate("create order items", err)
		}
		order.Items[i].OrderID = order.ID
	}
	if err := results.Close(); err != nil {
		return translate("create order items", err)
	}
	return nil
}

// Get returns the order with its items, product names joined in.
func (r *OrderRepository) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, translate("get order", err)
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price, oi.subtotal
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.db.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, translate("get order items", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, translate("get order items", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("get order items", err)
	}
	return order, nil
}

// List returns orders newest first without their items.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::bigint IS NULL OR customer_id = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.pool.Query(ctx, query, status, filter.CustomerID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, translate("list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, translate("list orders", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list orders", err)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.pool.QueryRow(ctx, query, orderID, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, translate("update order status", err)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o             domain.Order
		status        string
		paymentStatus string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &status, &paymentStatus, &o.Total,
		&o.ShippingAddress, &o.Notes, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if !o.Status.Valid() {
		return nil, fmt.Errorf("unexpected order status %q", status)
	}
	return &o, nil
}
