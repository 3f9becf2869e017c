package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa um item do catálogo com seu estoque disponível
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Customer is looked up or created by phone.
type Customer struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is created once, atomically, together with its items.
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      int64           `json:"customer_id"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
	Notes           string          `json:"notes"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// NewOrder cria um pedido pendente sem itens
func NewOrder(orderNumber string, customerID int64, shippingAddress, notes, paymentMethod string) *Order {
	now := time.Now().UTC()
	return &Order{
		OrderNumber:     orderNumber,
		CustomerID:      customerID,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		Total:           decimal.Zero,
		ShippingAddress: shippingAddress,
		Notes:           notes,
		PaymentMethod:   paymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AddItem appends an item and keeps Total equal to the sum of subtotals.
func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.Total = o.Total.Add(item.Subtotal)
}

// ItemsTotal recomputes the sum of item subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// OrderItem carries a snapshot of the product price at order time.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewOrderItem calcula o subtotal a partir do preço congelado
func NewOrderItem(productID int64, productName string, quantity int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Ledger reasons.
const (
	ReasonSale             = "sale"
	ReasonManualAdjustment = "manual adjustment"
)

// LedgerEntry is an immutable stock delta. ReferenceID points at an order for sales.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	Change      int       `json:"change"`
	Reason      string    `json:"reason"`
	ReferenceID *int64    `json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSaleEntry records the stock leaving with an order item.
func NewSaleEntry(productID int64, quantity int, orderID int64) *LedgerEntry {
	ref := orderID
	return &LedgerEntry{
		ProductID:   productID,
		Change:      -quantity,
		Reason:      ReasonSale,
		ReferenceID: &ref,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewAdjustmentEntry records a manual adjustment; an empty reason falls back to ReasonManualAdjustment.
func NewAdjustmentEntry(productID int64, change int, reason string) *LedgerEntry {
	if reason == "" {
		reason = ReasonManualAdjustment
	}
	return &LedgerEntry{
		ProductID: productID,
		Change:    change,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// MaxStock is the largest value a stock counter, quantity or change can hold (INTEGER columns).
const MaxStock = math.MaxInt32

// ValidateStockChange bounds a manual adjustment to what the stock column can represent.
func ValidateStockChange(delta int) error {
	if delta == 0 {
		return &ValidationError{Field: "change", Reason: "must not be zero"}
	}
	if delta > MaxStock || delta < -MaxStock {
		return &ValidationError{Field: "change", Reason: fmt.Sprintf("must be between %d and %d", -MaxStock, MaxStock)}
	}
	return nil
}

// LineItem is one requested (product, quantity) pair of a placement request.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// SortLineItems returns a copy ordered by ascending product id. Duplicates keep request order.
func SortLineItems(items []LineItem) []LineItem {
	sorted := make([]LineItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductID < sorted[j].ProductID
	})
	return sorted
}

// ValidateLineItems checks the placement preconditions on the item list.
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return &ValidationError{Field: "items", Reason: "must contain at least one item"}
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return &ValidationError{Field: "items.product_id", Reason: "must be a positive id"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Field: "items.quantity", Reason: "must be greater than zero"}
		}
		if item.Quantity > MaxStock {
			return &ValidationError{Field: "items.quantity", Reason: fmt.Sprintf("must not exceed %d", MaxStock)}
		}
	}
	return nil
}

// OrderFilter enumerates the optional list filters.
type OrderFilter struct {
	Status     *OrderStatus
	CustomerID *int64
	Limit      int
	Offset     int
}

const (
	DefaultOrderListLimit = 50
	MaxOrderListLimit     = 200
)

// Normalize applies the default and maximum page size.
func (f OrderFilter) Normalize() (OrderFilter, error) {
	if f.Offset < 0 {
		return f, &ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	if f.Limit < 0 {
		return f, &ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if f.Limit == 0 {
		f.Limit = DefaultOrderListLimit
	}
	if f.Limit > MaxOrderListLimit {
		f.Limit = MaxOrderListLimit
	}
	return f, nil
}

// ProductFilter enumerates the optional catalog filters.
type ProductFilter struct {
	Active   *bool
	Category *string
}

// LedgerFilter selects ledger entries by product and/or reference.
type LedgerFilter struct {
	ProductID   *int64
	ReferenceID *int64
}
