package handler

import (
	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the client's retry key for a scan
const IdempotencyKeyHeader = "Idempotency-Key"

// ScanHandler handles scan submission and move line queries
type ScanHandler struct {
	BaseHandler
	service *appscan.ScanService
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(service *appscan.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// Scan applies one scan to a shipment.
//
//	@ID				scanShipment
//	@Summary		Apply a scan to a shipment
//	@Description	Matches the scanned product to a pending move line and applies the quantity, resolving or creating the lot. A repeated Idempotency-Key is rejected.
//	@Tags			scanning
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string										true	"Shipment ID"	format(uuid)
//	@Param			Idempotency-Key	header		string										false	"Client retry key, at most 255 characters"
//	@Param			request			body		appscan.ScanRequest							true	"Scanned values"
//	@Success		200				{object}	APIResponse[appscan.ScanResult]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipments/{id}/scan [post]
func (h *ScanHandler) Scan(c *gin.Context) {
	shipmentID, ok := h.shipmentID(c)
	if !ok {
		return
	}

	var req appscan.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	if len(req.IdempotencyKey) > 255 {
		h.BadRequest(c, "Idempotency-Key must be at most 255 characters")
		return
	}

	result, err := h.service.Scan(c.Request.Context(), shipmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Moves lists every move line of a shipment in creation order.
//
//	@ID				listShipmentMoves
//	@Summary		List move lines
//	@Tags			scanning
//	@Produce		json
//	@Param			id	path		string	true	"Shipment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]appscan.MoveLineResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipments/{id}/moves [get]
func (h *ScanHandler) Moves(c *gin.Context) {
	shipmentID, ok := h.shipmentID(c)
	if !ok {
		return
	}
	lines, err := h.service.Moves(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// PendingMoves lists the move lines that still expect a quantity.
//
//	@ID				listShipmentPendingMoves
//	@Summary		List pending move lines
//	@Description	Open lines with quantity left to receive, in matching order
//	@Tags			scanning
//	@Produce		json
//	@Param			id	path		string	true	"Shipment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]appscan.MoveLineResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipments/{id}/pending-moves [get]
func (h *ScanHandler) PendingMoves(c *gin.Context) {
	shipmentID, ok := h.shipmentID(c)
	if !ok {
		return
	}
	lines, err := h.service.PendingMoves(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}
