package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ScanMetrics records scan reconciliation metrics.
type ScanMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	scansTotal       *Counter
	lotsCreatedTotal *Counter
	splitsTotal      *Counter
	appliedQuantity  *Histogram
	scanDuration     *Histogram

	pendingLines *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	pendingProvider PendingMetricsProvider
}

// PendingMetricsProvider reports how many move lines still wait for scans.
type PendingMetricsProvider interface {
	CountPendingLines(ctx context.Context) (map[string]int64, error)
}

// ScanMetricsConfig holds configuration for scan metrics.
type ScanMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	PendingProvider PendingMetricsProvider
}

// NewScanMetrics creates a new ScanMetrics instance.
func NewScanMetrics(cfg ScanMetricsConfig) (*ScanMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &ScanMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		pendingProvider: cfg.PendingProvider,
	}

	var err error
	sm.scansTotal, err = NewCounter(cfg.Meter,
		"stockscan_scans_total",
		"Total number of processed scans",
		"{scans}",
	)
	if err != nil {
		return nil, err
	}

	sm.lotsCreatedTotal, err = NewCounter(cfg.Meter,
		"stockscan_lots_created_total",
		"Total number of lots created while receiving scans",
		"{lots}",
	)
	if err != nil {
		return nil, err
	}

	sm.splitsTotal, err = NewCounter(cfg.Meter,
		"stockscan_move_line_splits_total",
		"Total number of move lines split by a scan",
		"{splits}",
	)
	if err != nil {
		return nil, err
	}

	sm.appliedQuantity, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "stockscan_applied_quantity",
		Description: "Quantity applied to move lines per scan",
		Unit:        "{units}",
		Boundaries:  QuantityBuckets,
	})
	if err != nil {
		return nil, err
	}

	sm.scanDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "stockscan_scan_duration_seconds",
		Description: "Time spent applying a scan",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	sm.pendingLines, err = NewGauge(cfg.Meter,
		"stockscan_pending_move_lines",
		"Current number of move lines waiting for scans",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordScan records one processed scan.
func (sm *ScanMetrics) RecordScan(ctx context.Context, direction, outcome string, applied float64, elapsed time.Duration) {
	if direction == "" {
		direction = "unknown"
	}
	sm.scansTotal.Inc(ctx, AttrDirection.String(direction), AttrOutcome.String(outcome))
	sm.scanDuration.RecordDuration(ctx, elapsed, AttrDirection.String(direction), AttrOutcome.String(outcome))
	if applied > 0 {
		sm.appliedQuantity.Record(ctx, applied, AttrDirection.String(direction))
	}
}

// RecordLotCreated records a lot created during reception.
func (sm *ScanMetrics) RecordLotCreated(ctx context.Context, direction string) {
	sm.lotsCreatedTotal.Inc(ctx, AttrDirection.String(direction))
}

// RecordSplit records a move line split.
func (sm *ScanMetrics) RecordSplit(ctx context.Context, direction string) {
	sm.splitsTotal.Inc(ctx, AttrDirection.String(direction))
}

// RecordPendingLines records the pending line gauge for one shipment direction.
func (sm *ScanMetrics) RecordPendingLines(ctx context.Context, direction string, count int64) {
	sm.pendingLines.Record(ctx, count, AttrDirection.String(direction))
}

// StartCollector starts periodic collection of the pending line gauge.
// It does nothing without a PendingMetricsProvider and only starts once.
func (sm *ScanMetrics) StartCollector(ctx context.Context, interval time.Duration) {
	if sm.pendingProvider == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	sm.collectOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			sm.collect(ctx)
			for {
				select {
				case <-ticker.C:
					sm.collect(ctx)
				case <-sm.stopChan:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	})
}

func (sm *ScanMetrics) collect(ctx context.Context) {
	counts, err := sm.pendingProvider.CountPendingLines(ctx)
	if err != nil {
		sm.logger.Warn("Failed to collect pending move lines", zap.Error(err))
		return
	}
	for direction, count := range counts {
		sm.RecordPendingLines(ctx, direction, count)
	}
}

// Stop stops the periodic collection.
func (sm *ScanMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewScanMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
