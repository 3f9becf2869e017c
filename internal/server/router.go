// Package server assembles the HTTP surface and runs it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/matheusmosca/commerce-orders/internal/catalog"
	"github.com/matheusmosca/commerce-orders/internal/inventory"
	"github.com/matheusmosca/commerce-orders/internal/logging"
	"github.com/matheusmosca/commerce-orders/internal/orders"
	"github.com/matheusmosca/commerce-orders/internal/store"
	"github.com/matheusmosca/commerce-orders/internal/telemetry"
)

const healthCheckTimeout = 2 * time.Second

type Options struct {
	ServiceName      string
	PlacementTimeout time.Duration
	Logger           *zap.Logger
	Metrics          *telemetry.HTTPMetrics
}

// NewRouter wires the use cases over backend and mounts every route.
func NewRouter(backend Backend, opts Options) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewHTTPMetrics()
	}

	orderUseCase, err := orders.NewOrderUseCase(
		backend.TxBeginner,
		backend.Stock,
		backend.Ledger,
		backend.Orders,
		logger,
		orders.WithPlacementTimeout(opts.PlacementTimeout),
	)
	if err != nil {
		return nil, err
	}
	inventoryUseCase := inventory.NewInventoryUseCase(
		backend.TxBeginner,
		backend.Stock,
		backend.Ledger,
		logger,
		inventory.WithAdjustmentTimeout(opts.PlacementTimeout),
	)
	catalogUseCase := catalog.NewUseCase(backend.Catalog)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(opts.ServiceName),
		logging.Middleware(logger),
		metrics.Middleware(),
	)

	r.GET("/health", healthCheck(opts.ServiceName, backend.Pinger))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	orders.NewOrderHandler(orderUseCase).Register(api)
	inventory.NewInventoryHandler(inventoryUseCase).Register(api)
	catalog.NewHandler(catalogUseCase).Register(api)

	return r, nil
}

func healthCheck(service string, pinger store.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		body := gin.H{
			"status":    "healthy",
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if err := pinger.Ping(ctx); err != nil {
			body["status"] = "unhealthy"
			body["error"] = "database unreachable"
			logging.FromContext(c.Request.Context()).Warn("health_check_failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}
