package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store/memory"
)

func seeded(t *testing.T) (*UseCase, *memory.Store) {
	t.Helper()
	s := memory.New()
	s.AddProduct(domain.Product{Name: "espresso", Price: decimal.RequireFromString("7.50"), Stock: 3, Category: "coffee", Active: true})
	s.AddProduct(domain.Product{Name: "cappuccino", Price: decimal.RequireFromString("9.90"), Stock: 0, Category: "coffee", Active: false})
	s.AddProduct(domain.Product{Name: "croissant", Price: decimal.RequireFromString("6.00"), Stock: 8, Category: "bakery", Active: true})
	return NewUseCase(memory.NewCatalog(s)), s
}

func TestListProductsFilters(t *testing.T) {
	uc, _ := seeded(t)
	ctx := context.Background()

	all, err := uc.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "cappuccino", all[0].Name)

	active := true
	category := "coffee"
	filtered, err := uc.ListProducts(ctx, domain.ProductFilter{Active: &active, Category: &category})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "espresso", filtered[0].Name)
}

func TestFindOrCreateCustomer(t *testing.T) {
	uc, _ := seeded(t)
	ctx := context.Background()
	email := "ana@example.com"

	created, isNew, err := uc.FindOrCreateCustomer(ctx, " +5511955550000 ", "Ana", &email)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "+5511955550000", created.Phone)

	again, isNew, err := uc.FindOrCreateCustomer(ctx, "+5511955550000", "Someone Else", nil)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Ana", again.Name)

	_, _, err = uc.FindOrCreateCustomer(ctx, "", "Ana", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.GetCustomer(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uc, _ := seeded(t)
	r := gin.New()
	NewHandler(uc).Register(r.Group("/api"))

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodGet, "/api/products?category=bakery", "")
	require.Equal(t, http.StatusOK, w.Code)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "6", products[0].Price.String())

	w = send(http.MethodGet, "/api/products?active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(http.MethodGet, "/api/products/77", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(http.MethodPost, "/api/customers/by-phone", `{"phone":"+5511944440000","name":"Bia"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send(http.MethodPost, "/api/customers/by-phone", `{"phone":"+5511944440000","name":"Bia"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var customer domain.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))

	w = send(http.MethodGet, "/api/customers/"+jsonID(customer.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(http.MethodPost, "/api/customers/by-phone", `{"name":"no phone"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
