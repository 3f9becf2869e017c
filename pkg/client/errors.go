package client

import "fmt"

// APIError is the decoded error body. errors.Is matches it against
// ErrNotFound, ErrValidation, ErrInsufficientStock and ErrStore by code.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
	ProductID  int64  `json:"product_id,omitempty"`
	Requested  int    `json:"requested,omitempty"`
	Available  int    `json:"available,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("orders api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == "not_found"
	case ErrValidation:
		return e.Code == "validation_error"
	case ErrInsufficientStock:
		return e.Code == "insufficient_stock"
	case ErrStore:
		return e.Code == "store_error" || e.StatusCode >= 500
	}
	return false
}
