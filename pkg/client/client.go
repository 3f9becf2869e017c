// Package client is a typed HTTP client for the orders service.
package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func WithHeader(key, value string) Option {
	return func(c *resty.Client) { c.SetHeader(key, value) }
}

// New creates a client for baseURL. Trace context from the request context is
// propagated in W3C headers.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(r.Header))
		return nil
	})

	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

type PlaceOrderRequest struct {
	CustomerID      int64             `json:"customer_id"`
	Items           []LineItem `json:"items"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
}

type ListOrdersParams struct {
	Status     OrderStatus
	CustomerID int64
	Limit      int
	Offset     int
}

func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	var order Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&order).
		SetError(&APIError{}).
		Post("/api/orders")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(orderID, 10)).
		SetResult(&order).
		SetError(&APIError{}).
		Get("/api/orders/{id}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, params ListOrdersParams) ([]Order, error) {
	req := c.http.R().SetContext(ctx)
	if params.Status != "" {
		req.SetQueryParam("status", string(params.Status))
	}
	if params.CustomerID > 0 {
		req.SetQueryParam("customer_id", strconv.FormatInt(params.CustomerID, 10))
	}
	if params.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(params.Offset))
	}

	var orders []Order
	resp, err := req.SetResult(&orders).SetError(&APIError{}).Get("/api/orders")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) (*Order, error) {
	var order Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(orderID, 10)).
		SetBody(map[string]string{"status": string(status)}).
		SetResult(&order).
		SetError(&APIError{}).
		Patch("/api/orders/{id}/status")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) AdjustStock(ctx context.Context, productID int64, change int, reason string) (*Product, error) {
	var product Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(productID, 10)).
		SetBody(map[string]any{"change": change, "reason": reason}).
		SetResult(&product).
		SetError(&APIError{}).
		Patch("/api/products/{id}/stock")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) InventoryHistory(ctx context.Context, productID int64) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(productID, 10)).
		SetResult(&entries).
		SetError(&APIError{}).
		Get("/api/products/{id}/inventory-history")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return entries, nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr.Code == "" {
		apiErr = &APIError{Message: resp.Status()}
	}
	apiErr.StatusCode = resp.StatusCode()
	return apiErr
}
