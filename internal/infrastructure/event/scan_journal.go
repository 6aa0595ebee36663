package event

import (
	"context"
	"sync"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"go.uber.org/zap"
)

// ScanJournal writes every scanning event to the log and keeps per-type counts
type ScanJournal struct {
	logger *zap.Logger
	mu     sync.Mutex
	counts map[string]int
}

// NewScanJournal creates a journal handler
func NewScanJournal(logger *zap.Logger) *ScanJournal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanJournal{
		logger: logger.Named("scan_journal"),
		counts: make(map[string]int),
	}
}

// EventTypes implements shared.EventHandler
func (j *ScanJournal) EventTypes() []string {
	return []string{
		scanning.EventTypeLotCreated,
		scanning.EventTypeMoveLineSplit,
		scanning.EventTypeScanApplied,
		scanning.EventTypeScanAbsorbed,
	}
}

// Handle implements shared.EventHandler
func (j *ScanJournal) Handle(_ context.Context, event shared.DomainEvent) error {
	j.mu.Lock()
	j.counts[event.EventType()]++
	j.mu.Unlock()

	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}
	switch e := event.(type) {
	case *scanning.LotCreatedEvent:
		fields = append(fields,
			zap.String("lot_id", e.LotID.String()),
			zap.String("lot_number", e.Number),
			zap.String("supplier_ref", e.SupplierRef),
		)
	case *scanning.MoveLineSplitEvent:
		fields = append(fields,
			zap.String("frozen_line_id", e.FrozenLineID.String()),
			zap.String("new_line_id", e.NewLineID.String()),
			zap.String("frozen_quantity", e.FrozenQuantity.String()),
			zap.String("remainder", e.Remainder.String()),
		)
	case *scanning.ScanAppliedEvent:
		fields = append(fields,
			zap.String("move_line_id", e.MoveLineID.String()),
			zap.String("direction", string(e.Direction)),
			zap.String("quantity", e.Quantity.String()),
		)
		if e.LotID != nil {
			fields = append(fields, zap.String("lot_id", e.LotID.String()))
		}
	case *scanning.ScanAbsorbedEvent:
		fields = append(fields,
			zap.String("product_id", e.ProductID.String()),
			zap.String("quantity", e.Quantity.String()),
		)
	}
	j.logger.Info("scan event", fields...)
	return nil
}

// Count returns how many events of the type were handled
func (j *ScanJournal) Count(eventType string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.counts[eventType]
}

var _ shared.EventHandler = (*ScanJournal)(nil)
