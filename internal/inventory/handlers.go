package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/commerce-orders/internal/httperr"
)

// InventoryHandler contém os handlers HTTP para inventário
type InventoryHandler struct {
	useCase *InventoryUseCase
}

// NewInventoryHandler cria uma nova instância de InventoryHandler
func NewInventoryHandler(useCase *InventoryUseCase) *InventoryHandler {
	return &InventoryHandler{useCase: useCase}
}

func (h *InventoryHandler) Register(rg gin.IRoutes) {
	rg.PATCH("/products/:id/stock", h.AdjustStock)
	rg.GET("/products/:id/inventory-history", h.History)
}

type adjustStockRequest struct {
	Change *int   `json:"change" binding:"required"`
	Reason string `json:"reason"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "change", err)
		return
	}

	product, err := h.useCase.AdjustProductStock(c.Request.Context(), id, *req.Change, req.Reason)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *InventoryHandler) History(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}

	entries, err := h.useCase.History(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
