package memory

import (
	"context"
	"sort"
	"time"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store"
)

// OrderRepository keeps orders and their items.
type OrderRepository struct {
	s *Store
}

func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{s: s}
}

// OrderNumberExists verifica se o número do pedido já foi usado
func (r *OrderRepository) OrderNumberExists(ctx context.Context, tx store.Tx, orderNumber string) (bool, error) {
	if _, err := r.s.txFrom(ctx, tx); err != nil {
		return false, err
	}
	for _, o := range r.s.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

// Create stores the order row and its items, assigning ids.
func (r *OrderRepository) Create(ctx context.Context, tx store.Tx, order *domain.Order) error {
	mt, err := r.s.txFrom(ctx, tx)
	if err != nil {
		return err
	}
	if _, ok := r.s.customers[order.CustomerID]; !ok {
		return &domain.NotFoundError{Resource: "customer", ID: order.CustomerID}
	}
	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return &domain.StoreError{Op: "create order", Err: errDuplicateOrderNumber}
		}
	}
	for _, item := range order.Items {
		if _, ok := r.s.products[item.ProductID]; !ok {
			return &domain.NotFoundError{Resource: "product", ID: item.ProductID}
		}
	}

	prevOrderID, prevItemID := r.s.nextOrderID, r.s.nextItemID
	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now

	items := make([]domain.OrderItem, len(order.Items))
	for i := range order.Items {
		r.s.nextItemID++
		order.Items[i].ID = r.s.nextItemID
		order.Items[i].OrderID = order.ID
		items[i] = order.Items[i]
	}

	row := *order
	row.Items = nil
	r.s.orders[order.ID] = &row
	r.s.items[order.ID] = items

	id := order.ID
	mt.onRollback(func() {
		delete(r.s.orders, id)
		delete(r.s.items, id)
		r.s.nextOrderID, r.s.nextItemID = prevOrderID, prevItemID
	})
	return nil
}

// Get returns the order with its items.
func (r *OrderRepository) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	var out *domain.Order
	err := r.s.view(ctx, func() error {
		o, ok := r.s.orders[orderID]
		if !ok {
			return &domain.NotFoundError{Resource: "order", ID: orderID}
		}
		out = r.withItems(o)
		return nil
	})
	return out, err
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	var matched []domain.Order
	err = r.s.view(ctx, func() error {
		for _, o := range r.s.orders {
			if filter.Status != nil && o.Status != *filter.Status {
				continue
			}
			if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
				continue
			}
			matched = append(matched, *o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.Offset >= len(matched) {
		return []domain.Order{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

// UpdateStatus sets the status without any transition rule.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	var out *domain.Order
	err := r.s.view(ctx, func() error {
		o, ok := r.s.orders[orderID]
		if !ok {
			return &domain.NotFoundError{Resource: "order", ID: orderID}
		}
		o.Status = status
		o.UpdatedAt = time.Now().UTC()
		row := *o
		out = &row
		return nil
	})
	return out, err
}

func (r *OrderRepository) withItems(o *domain.Order) *domain.Order {
	out := *o
	stored := r.s.items[o.ID]
	out.Items = make([]domain.OrderItem, len(stored))
	for i, item := range stored {
		if p, ok := r.s.products[item.ProductID]; ok {
			item.ProductName = p.Name
		}
		out.Items[i] = item
	}
	return &out
}
