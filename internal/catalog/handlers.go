package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/commerce-orders/internal/domain"
	"github.com/matheusmosca/commerce-orders/internal/httperr"
)

type Handler struct {
	useCase *UseCase
}

func NewHandler(useCase *UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.POST("/customers/by-phone", h.FindOrCreateCustomer)
	rg.GET("/customers/:id", h.GetCustomer)
}

type customerRequest struct {
	Phone string  `json:"phone" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
}

func (h *Handler) ListProducts(c *gin.Context) {
	var filter domain.ProductFilter

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.Write(c, &domain.ValidationError{Field: "active", Reason: "must be a boolean"})
			return
		}
		filter.Active = &active
	}
	if category, ok := c.GetQuery("category"); ok {
		filter.Category = &category
	}

	products, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}
	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) FindOrCreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "body", err)
		return
	}

	customer, created, err := h.useCase.FindOrCreateCustomer(c.Request.Context(), req.Phone, req.Name, req.Email)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, customer)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := httperr.ParamID(c, "id")
	if !ok {
		return
	}
	customer, err := h.useCase.GetCustomer(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
