package scanning

import (
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentType is the kind of shipment
type ShipmentType string

const (
	ShipmentTypeIn        ShipmentType = "in"         // Supplier receipt
	ShipmentTypeInReturn  ShipmentType = "in_return"  // Return to supplier
	ShipmentTypeOut       ShipmentType = "out"        // Customer delivery
	ShipmentTypeOutReturn ShipmentType = "out_return" // Customer return
)

// Direction tells which allocation flow a shipment uses
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// IsValid reports whether the shipment type is known
func (t ShipmentType) IsValid() bool {
	switch t {
	case ShipmentTypeIn, ShipmentTypeInReturn, ShipmentTypeOut, ShipmentTypeOutReturn:
		return true
	}
	return false
}

// Direction returns the allocation direction of the shipment type.
// Return shipments scan the same way as their forward counterpart.
func (t ShipmentType) Direction() Direction {
	switch t {
	case ShipmentTypeOut, ShipmentTypeOutReturn:
		return DirectionOutgoing
	default:
		return DirectionIncoming
	}
}

// Shipment owns move lines and holds the transient fields of the last scan
type Shipment struct {
	shared.BaseEntity
	Reference string
	Type      ShipmentType

	ScannedProductID *uuid.UUID
	ScannedQuantity  decimal.Decimal
	ScannedLotRef    string
	ScannedLotID     *uuid.UUID
	ScannedUnitPrice *decimal.Decimal
}

// NewShipment creates a new shipment
func NewShipment(reference string, shipmentType ShipmentType) (*Shipment, error) {
	if !shipmentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_TYPE", "Unknown shipment type: "+string(shipmentType))
	}
	return &Shipment{
		BaseEntity:      shared.NewBaseEntity(),
		Reference:       reference,
		Type:            shipmentType,
		ScannedQuantity: decimal.Zero,
	}, nil
}

// Direction returns the allocation direction of the shipment
func (s *Shipment) Direction() Direction {
	return s.Type.Direction()
}

// RecordScan stores the scan in the transient fields
func (s *Shipment) RecordScan(event ScanEvent) {
	productID := event.ProductID
	s.ScannedProductID = &productID
	s.ScannedQuantity = event.Quantity
	s.ScannedLotRef = event.LotRef
	s.ScannedLotID = copyID(event.LotID)
	s.ScannedUnitPrice = event.UnitPrice
	s.Touch()
}

// HasPendingScan returns true while transient scan fields are set
func (s *Shipment) HasPendingScan() bool {
	return s.ScannedProductID != nil
}

// PendingScan returns the recorded scan, if any
func (s *Shipment) PendingScan() (ScanEvent, bool) {
	if !s.HasPendingScan() {
		return ScanEvent{}, false
	}
	return ScanEvent{
		ProductID: *s.ScannedProductID,
		Quantity:  s.ScannedQuantity,
		LotRef:    s.ScannedLotRef,
		LotID:     copyID(s.ScannedLotID),
		UnitPrice: s.ScannedUnitPrice,
	}, true
}

// ClearScanValues resets the transient scan fields.
// Returns false when there was nothing to clear.
func (s *Shipment) ClearScanValues() bool {
	if !s.HasPendingScan() && s.ScannedLotRef == "" && s.ScannedLotID == nil && s.ScannedUnitPrice == nil {
		return false
	}
	s.ScannedProductID = nil
	s.ScannedQuantity = decimal.Zero
	s.ScannedLotRef = ""
	s.ScannedLotID = nil
	s.ScannedUnitPrice = nil
	s.Touch()
	return true
}
