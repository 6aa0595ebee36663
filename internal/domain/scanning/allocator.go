package scanning

import (
	"context"
	"fmt"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Collaborators are the storage-backed services one batch works with.
// They are bound to the batch's transaction.
type Collaborators struct {
	Moves       MoveLineRepository
	Lots        LotRepository
	Shipments   ShipmentRepository
	Requirement LotRequirement
	Numberer    LotNumberer
}

// Allocation describes what one scan did to a move line
type Allocation struct {
	Direction  Direction
	Line       *MoveLine       // Line that received the scan
	Frozen     *MoveLine       // Original line when it was split, nil otherwise
	Applied    decimal.Decimal // Quantity added to Line
	CreatedLot *Lot            // Lot created by the scan, nil otherwise
	events     []shared.DomainEvent
}

// IsSplit returns true if the scan split the matched line
func (a *Allocation) IsSplit() bool {
	return a.Frozen != nil
}

// Events returns the domain events recorded by the allocation
func (a *Allocation) Events() []shared.DomainEvent {
	return a.events
}

func (a *Allocation) record(event shared.DomainEvent) {
	a.events = append(a.events, event)
}

// Allocator applies a scan to a matched move line
type Allocator struct {
	moves       MoveLineRepository
	lots        LotRepository
	requirement LotRequirement
	numberer    LotNumberer
}

// NewAllocator creates an allocator working with the given collaborators
func NewAllocator(c Collaborators) *Allocator {
	numberer := c.Numberer
	if numberer == nil {
		numberer = NewDateLotNumberer(DefaultLotNumberLayout)
	}
	return &Allocator{
		moves:       c.Moves,
		lots:        c.Lots,
		requirement: c.Requirement,
		numberer:    numberer,
	}
}

// AppliedQuantity is the part of the scan the line can take: min(scanned, pending)
func AppliedQuantity(line *MoveLine, event ScanEvent) decimal.Decimal {
	return decimal.Min(event.Quantity, line.PendingQuantity())
}

// ApplyIncoming receives the scan on an incoming line, resolving or creating
// its lot under the configured policy. Returns nil when nothing is applied.
func (a *Allocator) ApplyIncoming(ctx context.Context, line *MoveLine, event ScanEvent, cfg Configuration) (*Allocation, error) {
	qty := AppliedQuantity(line, event)
	if !qty.IsPositive() {
		return nil, nil
	}

	resolved, err := a.resolveIncomingLot(ctx, line, event, cfg.LotCreation)
	if err != nil {
		return nil, err
	}

	alloc := &Allocation{Direction: DirectionIncoming, Applied: qty, CreatedLot: resolved.Created}
	if resolved.Created != nil {
		alloc.record(NewLotCreatedEvent(resolved.Created))
	}
	if err := a.apply(ctx, alloc, line, qty, resolved.LotID, event.UnitPrice); err != nil {
		return nil, err
	}
	return alloc, nil
}

// ApplyOutgoing consumes the scan on an outgoing line. The lot is the scanned
// one, else the line's own. Never creates lots. Returns nil when nothing is applied.
func (a *Allocator) ApplyOutgoing(ctx context.Context, line *MoveLine, event ScanEvent) (*Allocation, error) {
	qty := AppliedQuantity(line, event)
	if !qty.IsPositive() {
		return nil, nil
	}

	lotID := event.LotID
	if lotID == nil {
		lotID = line.LotID
	}

	alloc := &Allocation{Direction: DirectionOutgoing, Applied: qty}
	if err := a.apply(ctx, alloc, line, qty, copyID(lotID), nil); err != nil {
		return nil, err
	}
	return alloc, nil
}

// apply splits the line when it already holds a different lot, then adds the
// quantity and lot to the resulting line and persists it
func (a *Allocator) apply(ctx context.Context, alloc *Allocation, line *MoveLine, qty decimal.Decimal, lotID *uuid.UUID, unitPrice *decimal.Decimal) error {
	target := line
	if needsSplit(line, lotID) {
		created, err := a.split(ctx, line)
		if err != nil {
			return err
		}
		alloc.Frozen = line
		alloc.record(NewMoveLineSplitEvent(line, created))
		target = created
	}

	if err := target.Receive(qty, lotID, unitPrice); err != nil {
		return err
	}
	if err := a.moves.Save(ctx, target); err != nil {
		return fmt.Errorf("failed to save move line: %w", err)
	}

	alloc.Line = target
	alloc.record(NewScanAppliedEvent(target, alloc.Direction, qty))
	return nil
}

// needsSplit reports whether the lot being applied differs from the one the
// line holds. A line without a lot only splits once it has received quantity;
// a line carrying another lot always splits, even with nothing received.
func needsSplit(line *MoveLine, lotID *uuid.UUID) bool {
	if sameLot(line.LotID, lotID) {
		return false
	}
	return line.HasLot() || line.ReceivedQuantity.IsPositive()
}

// split freezes the line at its received quantity and copies the remainder
// into a new line with no lot and nothing received
func (a *Allocator) split(ctx context.Context, line *MoveLine) (*MoveLine, error) {
	remainder := line.Freeze()
	if err := a.moves.Save(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to freeze move line: %w", err)
	}

	zero := decimal.Zero
	state := line.State
	created, err := a.moves.CopyWithOverrides(ctx, line, MoveOverrides{
		Quantity:         &remainder,
		ReceivedQuantity: &zero,
		ClearLot:         true,
		State:            &state,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to split move line: %w", err)
	}
	return created, nil
}
