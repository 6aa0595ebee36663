package scanning

import (
	"slices"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationType classifies stock locations
type LocationType string

const (
	LocationTypeSupplier   LocationType = "supplier"
	LocationTypeStorage    LocationType = "storage"
	LocationTypeCustomer   LocationType = "customer"
	LocationTypeProduction LocationType = "production"
	LocationTypeLostFound  LocationType = "lost_found"
)

// IsValid reports whether the location type is known
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeSupplier, LocationTypeStorage, LocationTypeCustomer,
		LocationTypeProduction, LocationTypeLostFound:
		return true
	}
	return false
}

// Location is a stock location
type Location struct {
	shared.BaseEntity
	Name string
	Type LocationType
}

// NewLocation creates a new location
func NewLocation(name string, locationType LocationType) (*Location, error) {
	if !locationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION_TYPE", "Unknown location type: "+string(locationType))
	}
	return &Location{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Type:       locationType,
	}, nil
}

// ProductLotRequirement lists the location types for which a product's
// moves must carry a lot
type ProductLotRequirement struct {
	ProductID     uuid.UUID
	LocationTypes []LocationType
}

// Requires reports whether a move between the two location types needs a lot
func (r ProductLotRequirement) Requires(from, to LocationType) bool {
	return slices.Contains(r.LocationTypes, from) || slices.Contains(r.LocationTypes, to)
}
