package memory

import (
	"context"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
)

// LotRepository stores lots in the arena
type LotRepository struct {
	store *Store
}

// FindByID finds a lot by its ID
func (r *LotRepository) FindByID(_ context.Context, id uuid.UUID) (*scanning.Lot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	lot, ok := r.store.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *lot
	return &c, nil
}

// FindByIDs returns the known lots among ids
func (r *LotRepository) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*scanning.Lot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make(map[uuid.UUID]*scanning.Lot, len(ids))
	for _, id := range ids {
		if lot, ok := r.store.lots[id]; ok {
			c := *lot
			result[id] = &c
		}
	}
	return result, nil
}

// SearchBySupplierRef returns lots with the supplier reference in creation order
func (r *LotRepository) SearchBySupplierRef(_ context.Context, ref string) ([]*scanning.Lot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]*scanning.Lot, 0)
	if ref == "" {
		return result, nil
	}
	for _, id := range r.store.lotOrder {
		lot := r.store.lots[id]
		if lot.SupplierRef == ref {
			c := *lot
			result = append(result, &c)
		}
	}
	return result, nil
}

// Create stores a new lot
func (r *LotRepository) Create(_ context.Context, lot *scanning.Lot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.lots[lot.ID]; exists {
		return shared.ErrAlreadyExists
	}
	c := *lot
	r.store.lots[lot.ID] = &c
	r.store.lotOrder = append(r.store.lotOrder, lot.ID)
	return nil
}

var _ scanning.LotRepository = (*LotRepository)(nil)
