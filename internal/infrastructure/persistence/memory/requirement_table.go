package memory

import (
	"context"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/google/uuid"
)

// RequirementTable answers lot requirements from stored locations and
// product requirements
type RequirementTable struct {
	store *Store
}

// SaveLocation stores a location
func (t *RequirementTable) SaveLocation(location *scanning.Location) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	c := *location
	t.store.locations[location.ID] = &c
}

// SetRequirement replaces the lot requirement of a product
func (t *RequirementTable) SetRequirement(req scanning.ProductLotRequirement) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	req.LocationTypes = append([]scanning.LocationType(nil), req.LocationTypes...)
	t.store.requirements[req.ProductID] = req
}

// LotIsRequired reports whether the product needs a lot between the two
// locations. Unknown locations and products never require one.
func (t *RequirementTable) LotIsRequired(_ context.Context, productID, fromLocationID, toLocationID uuid.UUID) (bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	req, ok := t.store.requirements[productID]
	if !ok {
		return false, nil
	}
	return req.Requires(t.locationType(fromLocationID), t.locationType(toLocationID)), nil
}

func (t *RequirementTable) locationType(id uuid.UUID) scanning.LocationType {
	if loc, ok := t.store.locations[id]; ok {
		return loc.Type
	}
	return ""
}

var _ scanning.LotRequirement = (*RequirementTable)(nil)
