package scanning

import (
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeShipment = "Shipment"
	AggregateTypeLot      = "Lot"
)

// Event type constants
const (
	EventTypeLotCreated    = "LotCreated"
	EventTypeMoveLineSplit = "MoveLineSplit"
	EventTypeScanApplied   = "ScanApplied"
	EventTypeScanAbsorbed  = "ScanAbsorbed"
)

// LotCreatedEvent is raised when an incoming scan creates a lot
type LotCreatedEvent struct {
	shared.BaseDomainEvent
	LotID       uuid.UUID `json:"lot_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Number      string    `json:"number"`
	SupplierRef string    `json:"supplier_ref,omitempty"`
}

// NewLotCreatedEvent creates a new LotCreatedEvent
func NewLotCreatedEvent(lot *Lot) *LotCreatedEvent {
	return &LotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotCreated, AggregateTypeLot, lot.ID),
		LotID:           lot.ID,
		ProductID:       lot.ProductID,
		Number:          lot.Number,
		SupplierRef:     lot.SupplierRef,
	}
}

// MoveLineSplitEvent is raised when a line is frozen and its remainder moved to a new line
type MoveLineSplitEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID       `json:"shipment_id"`
	FrozenLineID   uuid.UUID       `json:"frozen_line_id"`
	NewLineID      uuid.UUID       `json:"new_line_id"`
	FrozenQuantity decimal.Decimal `json:"frozen_quantity"`
	Remainder      decimal.Decimal `json:"remainder"`
}

// NewMoveLineSplitEvent creates a new MoveLineSplitEvent
func NewMoveLineSplitEvent(frozen, created *MoveLine) *MoveLineSplitEvent {
	return &MoveLineSplitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMoveLineSplit, AggregateTypeShipment, frozen.ShipmentID),
		ShipmentID:      frozen.ShipmentID,
		FrozenLineID:    frozen.ID,
		NewLineID:       created.ID,
		FrozenQuantity:  frozen.Quantity,
		Remainder:       created.Quantity,
	}
}

// ScanAppliedEvent is raised when a scan updates a move line
type ScanAppliedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID       `json:"shipment_id"`
	MoveLineID uuid.UUID       `json:"move_line_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Direction  Direction       `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	LotID      *uuid.UUID      `json:"lot_id,omitempty"`
}

// NewScanAppliedEvent creates a new ScanAppliedEvent
func NewScanAppliedEvent(line *MoveLine, direction Direction, quantity decimal.Decimal) *ScanAppliedEvent {
	return &ScanAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScanApplied, AggregateTypeShipment, line.ShipmentID),
		ShipmentID:      line.ShipmentID,
		MoveLineID:      line.ID,
		ProductID:       line.ProductID,
		Direction:       direction,
		Quantity:        quantity,
		LotID:           copyID(line.LotID),
	}
}

// ScanAbsorbedEvent is raised when no pending line matched the scan
type ScanAbsorbedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID       `json:"shipment_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// NewScanAbsorbedEvent creates a new ScanAbsorbedEvent
func NewScanAbsorbedEvent(shipmentID uuid.UUID, event ScanEvent) *ScanAbsorbedEvent {
	return &ScanAbsorbedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScanAbsorbed, AggregateTypeShipment, shipmentID),
		ShipmentID:      shipmentID,
		ProductID:       event.ProductID,
		Quantity:        event.Quantity,
	}
}
