package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

func newRouter(sh *shop) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewOrderHandler(sh.uc).Register(r.Group("/api"))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PlaceOrder(t *testing.T) {
	// Arrange
	sh := newShop(t)
	p := sh.product("coffee", 10, 5)
	c := sh.customer("+5511911110001")
	r := newRouter(sh)

	// Act
	w := do(t, r, http.MethodPost, "/api/orders", gin.H{
		"customer_id":      c.ID,
		"items":            []gin.H{{"product_id": p.ID, "quantity": 3}},
		"shipping_address": "Rua B, 2",
	})

	// Assert
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "30", order.Total.String())
	assert.Len(t, order.Items, 1)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestHandler_PlaceOrderFailures(t *testing.T) {
	sh := newShop(t)
	p := sh.product("coffee", 10, 5)
	c := sh.customer("+5511911110002")
	r := newRouter(sh)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed", "not an object", http.StatusBadRequest, "validation_error"},
		{"empty items", gin.H{"customer_id": c.ID, "items": []gin.H{}}, http.StatusBadRequest, "validation_error"},
		{"unknown product", gin.H{"customer_id": c.ID, "items": []gin.H{{"product_id": 404, "quantity": 1}}}, http.StatusNotFound, "not_found"},
		{"insufficient", gin.H{"customer_id": c.ID, "items": []gin.H{{"product_id": p.ID, "quantity": 10}}}, http.StatusConflict, "insufficient_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/orders", tt.body)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
	assert.Equal(t, 5, sh.stockOf(t, p.ID))
}

func TestHandler_GetListAndUpdate(t *testing.T) {
	// Arrange
	sh := newShop(t)
	p := sh.product("coffee", 10, 5)
	c := sh.customer("+5511911110003")
	r := newRouter(sh)

	placed, err := sh.uc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: c.ID,
		Items:      []domain.LineItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	path := "/api/orders/" + strconv.FormatInt(placed.ID, 10)

	// Act + Assert
	w := do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, placed.OrderNumber, got.OrderNumber)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "coffee", got.Items[0].ProductName)

	w = do(t, r, http.MethodGet, "/api/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, path+"/status", gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.OrderStatusShipped, got.Status)

	w = do(t, r, http.MethodPatch, path+"/status", gin.H{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/orders?status=shipped&customer_id="+strconv.FormatInt(c.ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	w = do(t, r, http.MethodGet, "/api/orders?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	w = do(t, r, http.MethodGet, "/api/orders?limit=ten", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/orders?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
