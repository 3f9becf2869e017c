// Package httperr renders domain errors as JSON responses for the gin handlers.
package httperr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write sends the error body and records err on the gin context.
func Write(c *gin.Context, err error) {
	_ = c.Error(err)

	status := Status(err)
	body := gin.H{"code": domain.Kind(err)}

	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		stockErr   *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &stockErr):
		body["error"] = stockErr.Error()
		body["product_id"] = stockErr.ProductID
		body["requested"] = stockErr.Requested
		body["available"] = stockErr.Available
	case errors.As(err, &notFound):
		body["error"] = notFound.Error()
	case errors.As(err, &validation):
		body["error"] = validation.Error()
		body["field"] = validation.Field
	case status == http.StatusInternalServerError:
		body["error"] = "internal error"
	default:
		body["error"] = err.Error()
	}

	c.AbortWithStatusJSON(status, body)
}

// BadRequest reports a malformed request body or parameter.
func BadRequest(c *gin.Context, field string, err error) {
	Write(c, &domain.ValidationError{Field: field, Reason: err.Error()})
}

// ParamID parses a positive int64 path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Write(c, &domain.ValidationError{Field: name, Reason: "must be a positive integer"})
		return 0, false
	}
	return id, true
}
