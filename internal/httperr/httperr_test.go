package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Write(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestWriteMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &domain.ValidationError{Field: "status", Reason: "bad"}, http.StatusBadRequest, "validation_error"},
		{"wrapped not found", fmt.Errorf("failed to get order: %w", &domain.NotFoundError{Resource: "order", ID: 9}), http.StatusNotFound, "not_found"},
		{"insufficient stock", &domain.InsufficientStockError{ProductID: 1, Requested: 10, Available: 5}, http.StatusConflict, "insufficient_stock"},
		{"store", &domain.StoreError{Op: "commit", Err: errors.New("conn reset")}, http.StatusInternalServerError, "store_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "store_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := render(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestWriteInsufficientStockDetails(t *testing.T) {
	_, body := render(t, &domain.InsufficientStockError{ProductID: 3, Requested: 10, Available: 5})

	assert.EqualValues(t, 3, body["product_id"])
	assert.EqualValues(t, 10, body["requested"])
	assert.EqualValues(t, 5, body["available"])
}

func TestWriteHidesStoreDetails(t *testing.T) {
	_, body := render(t, &domain.StoreError{Op: "commit", Err: errors.New("password=secret")})

	assert.Equal(t, "internal error", body["error"])
}

func TestWriteUsesTypedMessage(t *testing.T) {
	_, body := render(t, fmt.Errorf("failed to get order: %w", &domain.NotFoundError{Resource: "order", ID: 9}))

	assert.Equal(t, "order 9 not found", body["error"])
}
