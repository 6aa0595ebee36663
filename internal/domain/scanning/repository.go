package scanning

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveOverrides lists the fields replaced when a move line is copied.
// Nil fields keep the source value. ClearLot detaches the lot.
type MoveOverrides struct {
	Quantity         *decimal.Decimal
	ReceivedQuantity *decimal.Decimal
	LotID            *uuid.UUID
	ClearLot         bool
	State            *MoveState
}

// Apply builds the copy described by the overrides. The copy gets a new
// identity; the repository assigns its sequence.
func (o MoveOverrides) Apply(src *MoveLine) *MoveLine {
	dup := src.Clone()
	dup.BaseEntity = newEntity()
	dup.Sequence = 0
	if o.Quantity != nil {
		dup.Quantity = *o.Quantity
	}
	if o.ReceivedQuantity != nil {
		dup.ReceivedQuantity = *o.ReceivedQuantity
	}
	if o.ClearLot {
		dup.LotID = nil
	} else if o.LotID != nil {
		dup.LotID = copyID(o.LotID)
	}
	if o.State != nil {
		dup.State = *o.State
	}
	return dup
}

// MoveLineRepository persists move lines
type MoveLineRepository interface {
	// FindByID finds a move line by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MoveLine, error)

	// FindByShipment returns every line of a shipment in creation order
	FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*MoveLine, error)

	// FindPendingByShipmentAndProduct returns open lines of the product that
	// still expect a quantity, in creation order
	FindPendingByShipmentAndProduct(ctx context.Context, shipmentID, productID uuid.UUID) ([]*MoveLine, error)

	// Create persists a new move line and assigns its sequence
	Create(ctx context.Context, line *MoveLine) error

	// Save updates an existing move line
	Save(ctx context.Context, line *MoveLine) error

	// CopyWithOverrides persists a copy of the line with the given fields replaced
	CopyWithOverrides(ctx context.Context, line *MoveLine, overrides MoveOverrides) (*MoveLine, error)
}

// LotReader reads lots by identity
type LotReader interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByIDs returns the lots that exist among ids, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Lot, error)
}

// LotRepository persists lots
type LotRepository interface {
	LotReader

	// SearchBySupplierRef returns lots stamped with the supplier reference,
	// oldest first
	SearchBySupplierRef(ctx context.Context, ref string) ([]*Lot, error)

	// Create persists a new lot immediately
	Create(ctx context.Context, lot *Lot) error
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	Save(ctx context.Context, shipment *Shipment) error
}

// ConfigurationRepository stores the single scanning configuration record
type ConfigurationRepository interface {
	// Get returns the stored configuration, or the default when none was saved
	Get(ctx context.Context) (Configuration, error)
	Save(ctx context.Context, cfg Configuration) error
}

// LotRequirement decides whether a product's move between two locations needs a lot
type LotRequirement interface {
	LotIsRequired(ctx context.Context, productID, fromLocationID, toLocationID uuid.UUID) (bool, error)
}
