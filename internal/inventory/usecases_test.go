package inventory

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setup(t *testing.T, stock int) (*InventoryUseCase, *memory.Store, domain.Product) {
	t.Helper()
	s := memory.New()
	p := s.AddProduct(domain.Product{Name: "beans", Price: decimal.NewFromInt(8), Stock: stock, Active: true})
	return NewInventoryUseCase(s, memory.NewStockStore(s), memory.NewLedger(s), nil), s, p
}

func TestAdjustProductStock_RestockAndRemove(t *testing.T) {
	// Arrange
	uc, s, p := setup(t, 5)
	ctx := context.Background()

	// Act
	restocked, err := uc.AdjustProductStock(ctx, p.ID, 10, "supplier delivery")
	require.NoError(t, err)
	removed, err := uc.AdjustProductStock(ctx, p.ID, -3, "")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 15, restocked.Stock)
	assert.Equal(t, 12, removed.Stock)

	entries, err := memory.NewLedger(s).ListEntries(ctx, domain.LedgerFilter{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 10, entries[0].Change)
	assert.Equal(t, "supplier delivery", entries[0].Reason)
	assert.Nil(t, entries[0].ReferenceID)
	assert.Equal(t, -3, entries[1].Change)
	assert.Equal(t, domain.ReasonManualAdjustment, entries[1].Reason)
}

func TestAdjustProductStock_NeverGoesNegative(t *testing.T) {
	uc, s, p := setup(t, 2)

	_, err := uc.AdjustProductStock(context.Background(), p.ID, -3, "shrinkage")

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	got, err := memory.NewCatalog(s).GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	entries, err := memory.NewLedger(s).ListEntries(context.Background(), domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAdjustProductStock_Validation(t *testing.T) {
	uc, _, p := setup(t, 2)

	_, err := uc.AdjustProductStock(context.Background(), p.ID, 0, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.AdjustProductStock(context.Background(), 0, 1, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.AdjustProductStock(context.Background(), 404, 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustProductStock_OutOfRangeChangeIsValidation(t *testing.T) {
	for _, delta := range []int{math.MaxInt, math.MinInt, domain.MaxStock + 1, -domain.MaxStock - 1} {
		uc, s, p := setup(t, 5)

		_, err := uc.AdjustProductStock(context.Background(), p.ID, delta, "restock")

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr, "delta %d", delta)
		assert.Equal(t, "change", vErr.Field)
		assert.False(t, domain.IsRetryable(err))

		got, err := memory.NewCatalog(s).GetProduct(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Stock)
	}
}

func TestAdjustProductStock_RestockAboveMaximumIsValidation(t *testing.T) {
	uc, s, p := setup(t, 5)

	_, err := uc.AdjustProductStock(context.Background(), p.ID, domain.MaxStock, "restock")

	assert.ErrorIs(t, err, domain.ErrValidation)
	entries, err := memory.NewLedger(s).ListEntries(context.Background(), domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAdjustProductStock_RunsUnderAdjustmentDeadline(t *testing.T) {
	// Arrange
	s := memory.New()
	p := s.AddProduct(domain.Product{Name: "beans", Price: decimal.NewFromInt(8), Stock: 5, Active: true})
	uc := NewInventoryUseCase(s, memory.NewStockStore(s), memory.NewLedger(s), nil, WithAdjustmentTimeout(20*time.Millisecond))

	holder, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer holder.Rollback(context.Background())

	// Act
	start := time.Now()
	_, err = uc.AdjustProductStock(context.Background(), p.ID, 1, "")

	// Assert
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAdjustProductStock_ConcurrentDecrementsReconcile(t *testing.T) {
	uc, s, p := setup(t, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AdjustProductStock(ctx, p.ID, -1, "")
			if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := memory.NewCatalog(s).GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	history, err := uc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestInventoryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uc, _, p := setup(t, 5)
	r := gin.New()
	NewInventoryHandler(uc).Register(r.Group("/api"))
	base := "/api/products/" + strconv.FormatInt(p.ID, 10)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPatch, base+"/stock", `{"change": -2, "reason": "damaged"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"stock":3`)

	w = send(http.MethodPatch, base+"/stock", `{"change": -9}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"available":3`)

	w = send(http.MethodPatch, base+"/stock", `{"reason": "no change"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodPatch, base+"/stock", `{"change": 9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"change"`)

	w = send(http.MethodPatch, "/api/products/404/stock", `{"change": 1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(http.MethodGet, base+"/inventory-history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reason":"damaged"`)
	assert.Contains(t, w.Body.String(), `"reference_id":null`)
}
