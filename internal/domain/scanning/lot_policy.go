package scanning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// lotResolution is the lot an incoming scan attaches, and the lot it had to create
type lotResolution struct {
	LotID   *uuid.UUID
	Created *Lot
}

// resolveIncomingLot decides which lot an incoming scan attaches to the line.
//
// search-create looks up the scanned supplier reference first and requires a
// lot when nothing is found. always requires a lot on every scan. A required
// lot continues the line's current lot when the scan does not name another
// one; otherwise a new lot is created and persisted before it is attached.
func (a *Allocator) resolveIncomingLot(ctx context.Context, line *MoveLine, event ScanEvent, policy LotCreationPolicy) (lotResolution, error) {
	required, err := a.requirement.LotIsRequired(ctx, line.ProductID, line.FromLocationID, line.ToLocationID)
	if err != nil {
		return lotResolution{}, fmt.Errorf("failed to evaluate lot requirement: %w", err)
	}

	switch policy {
	case LotCreationSearchCreate:
		if event.HasLotRef() {
			found, err := a.searchLot(ctx, event)
			if err != nil {
				return lotResolution{}, err
			}
			if found != nil {
				id := found.ID
				return lotResolution{LotID: &id}, nil
			}
			required = true
		}
	case LotCreationAlways:
		required = true
	}

	if !required {
		return lotResolution{}, nil
	}

	reuse, err := a.continuesLineLot(ctx, line, event)
	if err != nil {
		return lotResolution{}, err
	}
	if reuse {
		return lotResolution{LotID: copyID(line.LotID)}, nil
	}

	lot, err := NewLot(event.ProductID, a.numberer.Next(ctx, event.ProductID, event.LotRef), event.LotRef)
	if err != nil {
		return lotResolution{}, err
	}
	if err := a.lots.Create(ctx, lot); err != nil {
		return lotResolution{}, fmt.Errorf("failed to create lot: %w", err)
	}
	id := lot.ID
	return lotResolution{LotID: &id, Created: lot}, nil
}

// searchLot returns the oldest lot of the scanned product stamped with the
// scanned supplier reference, or nil
func (a *Allocator) searchLot(ctx context.Context, event ScanEvent) (*Lot, error) {
	lots, err := a.lots.SearchBySupplierRef(ctx, event.LotRef)
	if err != nil {
		return nil, fmt.Errorf("failed to search lots by supplier reference: %w", err)
	}
	for _, lot := range lots {
		if lot.ProductID == event.ProductID {
			return lot, nil
		}
	}
	return nil, nil
}

// continuesLineLot reports whether the scan keeps filling the line's own lot:
// either no reference was scanned, or the reference is that lot's number
func (a *Allocator) continuesLineLot(ctx context.Context, line *MoveLine, event ScanEvent) (bool, error) {
	if !line.HasLot() {
		return false, nil
	}
	if !event.HasLotRef() {
		return true, nil
	}
	lot, err := a.lots.FindByID(ctx, *line.LotID)
	if err != nil {
		return false, fmt.Errorf("failed to load lot of move line: %w", err)
	}
	return lot.Number == event.LotRef, nil
}
