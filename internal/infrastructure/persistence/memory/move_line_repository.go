package memory

import (
	"context"
	"sort"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
)

// MoveLineRepository stores move lines in the arena
type MoveLineRepository struct {
	store *Store
}

// FindByID finds a move line by its ID
func (r *MoveLineRepository) FindByID(_ context.Context, id uuid.UUID) (*scanning.MoveLine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	line, ok := r.store.moves[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return line.Clone(), nil
}

// FindByShipment returns every line of the shipment in creation order
func (r *MoveLineRepository) FindByShipment(_ context.Context, shipmentID uuid.UUID) ([]*scanning.MoveLine, error) {
	return r.filter(func(l *scanning.MoveLine) bool {
		return l.ShipmentID == shipmentID
	}), nil
}

// FindPendingByShipmentAndProduct returns the pending lines of the product in creation order
func (r *MoveLineRepository) FindPendingByShipmentAndProduct(_ context.Context, shipmentID, productID uuid.UUID) ([]*scanning.MoveLine, error) {
	return r.filter(func(l *scanning.MoveLine) bool {
		return l.ShipmentID == shipmentID && l.ProductID == productID && l.IsPending()
	}), nil
}

func (r *MoveLineRepository) filter(keep func(*scanning.MoveLine) bool) []*scanning.MoveLine {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]*scanning.MoveLine, 0)
	for _, line := range r.store.moves {
		if keep(line) {
			result = append(result, line.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})
	return result
}

// Create stores a new line and assigns its sequence
func (r *MoveLineRepository) Create(_ context.Context, line *scanning.MoveLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.moves[line.ID]; exists {
		return shared.ErrAlreadyExists
	}
	r.insert(line)
	return nil
}

// insert requires the write lock
func (r *MoveLineRepository) insert(line *scanning.MoveLine) {
	r.store.moveSeq++
	line.Sequence = r.store.moveSeq
	r.store.moves[line.ID] = line.Clone()
}

// Save replaces an existing line
func (r *MoveLineRepository) Save(_ context.Context, line *scanning.MoveLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.moves[line.ID]; !exists {
		return shared.ErrNotFound
	}
	r.store.moves[line.ID] = line.Clone()
	return nil
}

// CopyWithOverrides stores a copy of the line as a new record
func (r *MoveLineRepository) CopyWithOverrides(_ context.Context, line *scanning.MoveLine, overrides scanning.MoveOverrides) (*scanning.MoveLine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.moves[line.ID]; !exists {
		return nil, shared.ErrNotFound
	}
	dup := overrides.Apply(line)
	r.insert(dup)
	return dup, nil
}

var _ scanning.MoveLineRepository = (*MoveLineRepository)(nil)
