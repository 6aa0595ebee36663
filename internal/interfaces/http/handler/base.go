// Package handler holds the gin handlers of the scanning API.
package handler

import (
	"errors"
	"net/http"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/erp/stockscan/internal/interfaces/http/dto"
	"github.com/erp/stockscan/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps domain errors to their HTTP status; anything else is a 500
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	// Error details stay in the logs
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// shipmentID binds the :id path parameter, writing a 400 when it is not a UUID
func (h *BaseHandler) shipmentID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.ShipmentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleBindError(c, err)
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
