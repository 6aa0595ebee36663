package scanning

import (
	"strings"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScanEvent is one physical scan: a product, a quantity and optional lot data.
// It is consumed once and then discarded.
type ScanEvent struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	LotRef    string           // Free-text supplier lot reference (incoming)
	LotID     *uuid.UUID       // Pre-existing lot (outgoing)
	UnitPrice *decimal.Decimal // Optional
}

// NewScanEvent creates a scan event, trimming the lot reference
func NewScanEvent(productID uuid.UUID, quantity decimal.Decimal, lotRef string, lotID *uuid.UUID, unitPrice *decimal.Decimal) ScanEvent {
	return ScanEvent{
		ProductID: productID,
		Quantity:  quantity,
		LotRef:    strings.TrimSpace(lotRef),
		LotID:     copyID(lotID),
		UnitPrice: unitPrice,
	}
}

// Validate rejects events the allocator must never see
func (e ScanEvent) Validate() error {
	if e.ProductID == uuid.Nil {
		return shared.ErrInvalidInput.Errorf("scanned product is required")
	}
	if !e.Quantity.IsPositive() {
		return shared.ErrInvalidInput.Errorf("scanned quantity must be positive")
	}
	if e.UnitPrice != nil && e.UnitPrice.IsNegative() {
		return shared.ErrInvalidInput.Errorf("unit price cannot be negative")
	}
	return nil
}

// HasLotRef returns true if a supplier lot reference was scanned
func (e ScanEvent) HasLotRef() bool {
	return e.LotRef != ""
}

// HasLotID returns true if an existing lot was scanned
func (e ScanEvent) HasLotID() bool {
	return e.LotID != nil
}
