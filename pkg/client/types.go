package client

import "github.com/matheusmosca/commerce-orders/internal/domain"

// Wire types returned by the service.
type (
	Order       = domain.Order
	OrderItem   = domain.OrderItem
	OrderStatus = domain.OrderStatus
	LineItem    = domain.LineItem
	Product     = domain.Product
	LedgerEntry = domain.LedgerEntry
)

const (
	OrderStatusPending   = domain.OrderStatusPending
	OrderStatusConfirmed = domain.OrderStatusConfirmed
	OrderStatusPreparing = domain.OrderStatusPreparing
	OrderStatusShipped   = domain.OrderStatusShipped
	OrderStatusDelivered = domain.OrderStatusDelivered
	OrderStatusCancelled = domain.OrderStatusCancelled
)

// Sentinels matched by APIError.Is.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrValidation        = domain.ErrValidation
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrStore             = domain.ErrStore
)
