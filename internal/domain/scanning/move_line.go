package scanning

import (
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveState is the workflow state of a move line.
// Scanning never changes it; split lines inherit it.
type MoveState string

const (
	MoveStateDraft     MoveState = "draft"
	MoveStateAssigned  MoveState = "assigned"
	MoveStateDone      MoveState = "done"
	MoveStateCancelled MoveState = "cancelled"
)

// IsValid reports whether the state is known
func (s MoveState) IsValid() bool {
	switch s {
	case MoveStateDraft, MoveStateAssigned, MoveStateDone, MoveStateCancelled:
		return true
	}
	return false
}

// IsOpen reports whether lines in this state can still receive scans
func (s MoveState) IsOpen() bool {
	return s == MoveStateDraft || s == MoveStateAssigned
}

// MoveLine is one product movement of a shipment
type MoveLine struct {
	shared.BaseEntity
	ShipmentID       uuid.UUID
	ProductID        uuid.UUID
	FromLocationID   uuid.UUID
	ToLocationID     uuid.UUID
	Quantity         decimal.Decimal  // Eventually committed amount
	ReceivedQuantity decimal.Decimal  // Cumulative amount matched by scans
	LotID            *uuid.UUID       // Attached lot (optional)
	UnitPrice        *decimal.Decimal // Optional
	State            MoveState
	Sequence         int64 // Creation order within the shipment
}

// NewMoveLine creates a new draft move line
func NewMoveLine(shipmentID, productID, fromLocationID, toLocationID uuid.UUID, quantity decimal.Decimal) (*MoveLine, error) {
	if shipmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPMENT", "Shipment ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Move quantity must be positive")
	}
	return &MoveLine{
		BaseEntity:       shared.NewBaseEntity(),
		ShipmentID:       shipmentID,
		ProductID:        productID,
		FromLocationID:   fromLocationID,
		ToLocationID:     toLocationID,
		Quantity:         quantity,
		ReceivedQuantity: decimal.Zero,
		State:            MoveStateDraft,
	}, nil
}

// PendingQuantity returns quantity - received quantity, never below zero
func (m *MoveLine) PendingQuantity() decimal.Decimal {
	pending := m.Quantity.Sub(m.ReceivedQuantity)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// IsPending returns true while the line still expects scans
func (m *MoveLine) IsPending() bool {
	return m.State.IsOpen() && m.PendingQuantity().IsPositive()
}

// HasLot returns true if a lot is attached
func (m *MoveLine) HasLot() bool {
	return m.LotID != nil
}

// CarriesLot returns true if the given lot is attached
func (m *MoveLine) CarriesLot(lotID uuid.UUID) bool {
	return m.LotID != nil && *m.LotID == lotID
}

// Freeze turns the line into its final form: quantity becomes what was received.
// Returns the remainder that was pending before freezing.
func (m *MoveLine) Freeze() decimal.Decimal {
	remainder := m.PendingQuantity()
	m.Quantity = m.ReceivedQuantity
	m.Touch()
	return remainder
}

// Receive adds a scanned quantity and attaches the lot.
// A nil unit price leaves the current price untouched.
func (m *MoveLine) Receive(quantity decimal.Decimal, lotID *uuid.UUID, unitPrice *decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if quantity.GreaterThan(m.PendingQuantity()) {
		return shared.NewDomainError("QUANTITY_EXCEEDS_PENDING", "Received quantity exceeds pending quantity")
	}
	m.ReceivedQuantity = m.ReceivedQuantity.Add(quantity)
	m.LotID = copyID(lotID)
	if unitPrice != nil {
		price := *unitPrice
		m.UnitPrice = &price
	}
	m.Touch()
	return nil
}

// Clone returns a deep copy of the line
func (m *MoveLine) Clone() *MoveLine {
	c := *m
	c.LotID = copyID(m.LotID)
	if m.UnitPrice != nil {
		price := *m.UnitPrice
		c.UnitPrice = &price
	}
	return &c
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameLot(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func newEntity() shared.BaseEntity {
	return shared.NewBaseEntity()
}
