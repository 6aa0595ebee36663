package scanning

import (
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
)

// Lot identifies a traceable quantity of one product
type Lot struct {
	shared.BaseEntity
	ProductID   uuid.UUID
	Number      string // Display identifier, unique per product in practice
	SupplierRef string // Supplier's lot reference, empty when unknown
}

// NewLot creates a new lot
func NewLot(productID uuid.UUID, number, supplierRef string) (*Lot, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number cannot be empty")
	}
	return &Lot{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Number:      number,
		SupplierRef: supplierRef,
	}, nil
}

// HasSupplierRef returns true if a supplier reference was stamped on the lot
func (l *Lot) HasSupplierRef() bool {
	return l.SupplierRef != ""
}
