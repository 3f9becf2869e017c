package orders

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/httperr"
)

// OrderHandler contém os handlers HTTP para pedidos
type OrderHandler struct {
	useCase *OrderUseCase
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(useCase *OrderUseCase) *OrderHandler {
	return &OrderHandler{useCase: useCase}
}

// Register mounts the order routes on rg.
func (h *OrderHandler) Register(rg gin.IRoutes) {
	rg.POST("/orders", h.PlaceOrder)
	rg.GET("/orders", h.ListOrders)
	rg.GET("/orders/:id", h.GetOrder)
	rg.PATCH("/orders/:id/status", h.UpdateStatus)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "body", err)
		return
	}

	order, err := h.useCase.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter, err := parseOrderFilter(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	orders, err := h.useCase.ListOrders(c.Request.Context(), filter)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "status", err)
		return
	}

	order, err := h.useCase.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func parseOrderFilter(c *gin.Context) (domain.OrderFilter, error) {
	var filter domain.OrderFilter

	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if raw := c.Query("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, &domain.ValidationError{Field: "customer_id", Reason: "must be an integer"}
		}
		filter.CustomerID = &id
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}
