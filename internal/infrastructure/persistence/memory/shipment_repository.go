package memory

import (
	"context"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
)

// ShipmentRepository stores shipments in the arena
type ShipmentRepository struct {
	store *Store
}

// FindByID finds a shipment by its ID
func (r *ShipmentRepository) FindByID(_ context.Context, id uuid.UUID) (*scanning.Shipment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	shipment, ok := r.store.shipments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneShipment(shipment), nil
}

// Save creates or replaces a shipment
func (r *ShipmentRepository) Save(_ context.Context, shipment *scanning.Shipment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.shipments[shipment.ID] = cloneShipment(shipment)
	return nil
}

func cloneShipment(s *scanning.Shipment) *scanning.Shipment {
	c := *s
	if s.ScannedProductID != nil {
		id := *s.ScannedProductID
		c.ScannedProductID = &id
	}
	if s.ScannedLotID != nil {
		id := *s.ScannedLotID
		c.ScannedLotID = &id
	}
	if s.ScannedUnitPrice != nil {
		price := *s.ScannedUnitPrice
		c.ScannedUnitPrice = &price
	}
	return &c
}

var _ scanning.ShipmentRepository = (*ShipmentRepository)(nil)
