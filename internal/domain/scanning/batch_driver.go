package scanning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// BatchItem pairs a matched move line with its shipment
type BatchItem struct {
	Shipment *Shipment
	Line     *MoveLine
}

// BatchDriver applies the scans recorded on shipments to their matched lines.
// The whole batch is expected to run inside one transaction.
type BatchDriver struct {
	registry *StrategyRegistry
	collab   Collaborators
}

// NewBatchDriver creates a batch driver
func NewBatchDriver(registry *StrategyRegistry, collab Collaborators) *BatchDriver {
	if registry == nil {
		registry = NewStrategyRegistry()
	}
	return &BatchDriver{registry: registry, collab: collab}
}

// Process snapshots and clears every shipment's scan, then runs incoming
// items followed by outgoing items. cfg is fixed for the whole batch.
// Items whose shipment carries no scan are skipped.
func (d *BatchDriver) Process(ctx context.Context, cfg Configuration, items []BatchItem) ([]*Allocation, error) {
	scans := make(map[uuid.UUID]ScanEvent, len(items))
	for _, item := range items {
		id := item.Shipment.ID
		if _, seen := scans[id]; seen {
			continue
		}
		event, ok := item.Shipment.PendingScan()
		if ok {
			scans[id] = event
		}
		if item.Shipment.ClearScanValues() && d.collab.Shipments != nil {
			if err := d.collab.Shipments.Save(ctx, item.Shipment); err != nil {
				return nil, fmt.Errorf("failed to clear scan of shipment %s: %w", id, err)
			}
		}
	}

	var allocations []*Allocation
	for _, direction := range []Direction{DirectionIncoming, DirectionOutgoing} {
		for _, item := range items {
			if item.Shipment.Direction() != direction {
				continue
			}
			event, ok := scans[item.Shipment.ID]
			if !ok {
				continue
			}
			strategy, err := d.registry.For(item.Shipment.Type)
			if err != nil {
				return nil, err
			}
			alloc, err := strategy.Allocate(ctx, d.collab, item.Line, event, cfg)
			if err != nil {
				return nil, err
			}
			if alloc != nil {
				allocations = append(allocations, alloc)
			}
		}
	}
	return allocations, nil
}
