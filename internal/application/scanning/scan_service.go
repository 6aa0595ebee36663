package scanning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/erp/stockscan/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Scan outcomes reported to the ScanRecorder
const (
	OutcomeApplied  = "applied"
	OutcomeAbsorbed = "absorbed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// ScanRecorder receives scan measurements
type ScanRecorder interface {
	RecordScan(ctx context.Context, direction, outcome string, applied float64, elapsed time.Duration)
	RecordLotCreated(ctx context.Context, direction string)
	RecordSplit(ctx context.Context, direction string)
}

// ScanService applies scans to shipments
type ScanService struct {
	txScope        TransactionScope
	registry       *scanning.StrategyRegistry
	numberer       scanning.LotNumberer
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	eventPublisher shared.EventPublisher
	recorder       ScanRecorder
	logger         *zap.Logger
}

// NewScanService creates a new ScanService
func NewScanService(txScope TransactionScope, logger *zap.Logger) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		txScope:        txScope,
		registry:       scanning.NewStrategyRegistry(),
		numberer:       scanning.NewDateLotNumberer(scanning.DefaultLotNumberLayout),
		idempotencyTTL: shared.DefaultIdempotencyTTL,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ScanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables idempotency keys on scans
func (s *ScanService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetLotNumberer replaces the numbering of created lots
func (s *ScanService) SetLotNumberer(numberer scanning.LotNumberer) {
	s.numberer = numberer
}

// SetStrategyRegistry replaces the shipment strategies
func (s *ScanService) SetStrategyRegistry(registry *scanning.StrategyRegistry) {
	s.registry = registry
}

// SetRecorder sets the scan metrics recorder
func (s *ScanService) SetRecorder(recorder ScanRecorder) {
	s.recorder = recorder
}

func (s *ScanService) collaborators(repos TransactionalRepositories) scanning.Collaborators {
	return scanning.Collaborators{
		Moves:       repos.MoveLineRepo(),
		Lots:        repos.LotRepo(),
		Shipments:   repos.ShipmentRepo(),
		Requirement: repos.LotRequirement(),
		Numberer:    s.numberer,
	}
}

// Scan applies one scan to the shipment. A scan that matches no pending line
// is absorbed without error.
func (s *ScanService) Scan(ctx context.Context, shipmentID uuid.UUID, req ScanRequest) (*ScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "scan", "apply",
		telemetry.WithAttribute(telemetry.SpanAttrShipmentID, shipmentID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity.String()),
		telemetry.WithAttribute(telemetry.SpanAttrLotRef, req.LotRef),
	)
	defer span.End()
	start := time.Now()

	event := req.ToEvent()
	if err := event.Validate(); err != nil {
		telemetry.RecordError(span, err)
		s.record(ctx, "", OutcomeRejected, decimal.Zero, start)
		return nil, err
	}

	key := ""
	if req.IdempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("scan:%s:%s", shipmentID, req.IdempotencyKey)
		claimed, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !claimed {
			s.record(ctx, "", OutcomeRejected, decimal.Zero, start)
			return nil, shared.ErrAlreadyExists.Errorf("scan %q was already applied", req.IdempotencyKey)
		}
	}

	var (
		result *ScanResult
		events []shared.DomainEvent
		allocs []*scanning.Allocation
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		shipment, err := repos.ShipmentRepo().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := s.validateScannedLot(ctx, repos.LotRepo(), shipment, event); err != nil {
			return err
		}
		cfg, err := repos.ConfigurationRepo().Get(ctx)
		if err != nil {
			return err
		}
		strategy, err := s.registry.For(shipment.Type)
		if err != nil {
			return err
		}
		collab := s.collaborators(repos)

		shipment.RecordScan(event)
		pending, err := repos.MoveLineRepo().FindPendingByShipmentAndProduct(ctx, shipment.ID, event.ProductID)
		if err != nil {
			return err
		}
		line, err := strategy.Match(ctx, collab, event, pending)
		if err != nil {
			return err
		}

		result = &ScanResult{ShipmentID: shipment.ID, Direction: string(shipment.Direction()), Applied: decimal.Zero}
		if line != nil {
			allocs, err = scanning.NewBatchDriver(s.registry, collab).Process(ctx, cfg, []scanning.BatchItem{{Shipment: shipment, Line: line}})
			if err != nil {
				return err
			}
		} else {
			shipment.ClearScanValues()
			if err := repos.ShipmentRepo().Save(ctx, shipment); err != nil {
				return err
			}
		}

		if len(allocs) == 0 {
			result.Absorbed = true
			events = append(events, scanning.NewScanAbsorbedEvent(shipment.ID, event))
		}
		for _, alloc := range allocs {
			events = append(events, alloc.Events()...)
		}

		return s.fillResult(ctx, repos, result, allocs)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.forget(ctx, key)
		outcome := OutcomeFailed
		if isClientError(err) {
			outcome = OutcomeRejected
		}
		s.record(ctx, "", outcome, decimal.Zero, start)
		s.logger.Warn("scan failed",
			zap.String("shipment_id", shipmentID.String()),
			zap.String("product_id", event.ProductID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.publishDomainEvents(ctx, events)
	s.recordAllocations(ctx, result, allocs, start)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDirection, result.Direction,
		telemetry.SpanAttrAbsorbed, result.Absorbed,
		telemetry.SpanAttrApplied, result.Applied.String(),
	)

	s.logger.Info("scan processed",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("product_id", event.ProductID.String()),
		zap.String("direction", result.Direction),
		zap.String("scanned", event.Quantity.String()),
		zap.String("applied", result.Applied.String()),
		zap.Bool("absorbed", result.Absorbed),
	)
	return result, nil
}

// validateScannedLot checks that a lot selected for an outgoing scan exists
// and belongs to the scanned product
func (s *ScanService) validateScannedLot(ctx context.Context, lots scanning.LotReader, shipment *scanning.Shipment, event scanning.ScanEvent) error {
	if !event.HasLotID() || shipment.Direction() != scanning.DirectionOutgoing {
		return nil
	}
	lot, err := lots.FindByID(ctx, *event.LotID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidInput.Errorf("lot %s does not exist", event.LotID)
		}
		return err
	}
	if lot.ProductID != event.ProductID {
		return shared.ErrInvalidInput.Errorf("lot %s belongs to another product", lot.Number)
	}
	return nil
}

func (s *ScanService) fillResult(ctx context.Context, repos TransactionalRepositories, result *ScanResult, allocs []*scanning.Allocation) error {
	lines, err := repos.MoveLineRepo().FindByShipment(ctx, result.ShipmentID)
	if err != nil {
		return err
	}
	pending := make([]*scanning.MoveLine, 0, len(lines))
	for _, line := range lines {
		if line.IsPending() {
			pending = append(pending, line)
		}
	}

	var touched []*scanning.MoveLine
	for _, alloc := range allocs {
		touched = append(touched, alloc.Line)
		if alloc.Frozen != nil {
			touched = append(touched, alloc.Frozen)
		}
	}
	numbers, err := lotNumbers(ctx, repos.LotRepo(), append(touched, pending...))
	if err != nil {
		return err
	}

	result.PendingMoves = toResponses(pending, numbers)
	for _, alloc := range allocs {
		result.Applied = result.Applied.Add(alloc.Applied)
		line := ToMoveLineResponse(alloc.Line, lotNumberOf(alloc.Line, numbers))
		result.Line = &line
		if alloc.Frozen != nil {
			frozen := ToMoveLineResponse(alloc.Frozen, lotNumberOf(alloc.Frozen, numbers))
			result.Frozen = &frozen
		}
		if alloc.CreatedLot != nil {
			result.CreatedLot = ToLotResponse(alloc.CreatedLot)
		}
	}
	return nil
}

// PendingMoves returns the shipment's lines that still expect scans
func (s *ScanService) PendingMoves(ctx context.Context, shipmentID uuid.UUID) ([]MoveLineResponse, error) {
	return s.listMoves(ctx, shipmentID, true)
}

// Moves returns every line of the shipment
func (s *ScanService) Moves(ctx context.Context, shipmentID uuid.UUID) ([]MoveLineResponse, error) {
	return s.listMoves(ctx, shipmentID, false)
}

func (s *ScanService) listMoves(ctx context.Context, shipmentID uuid.UUID, pendingOnly bool) ([]MoveLineResponse, error) {
	var result []MoveLineResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ShipmentRepo().FindByID(ctx, shipmentID); err != nil {
			return err
		}
		lines, err := repos.MoveLineRepo().FindByShipment(ctx, shipmentID)
		if err != nil {
			return err
		}
		if pendingOnly {
			kept := lines[:0]
			for _, line := range lines {
				if line.IsPending() {
					kept = append(kept, line)
				}
			}
			lines = kept
		}
		numbers, err := lotNumbers(ctx, repos.LotRepo(), lines)
		if err != nil {
			return err
		}
		result = toResponses(lines, numbers)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetConfiguration returns the scanning configuration
func (s *ScanService) GetConfiguration(ctx context.Context) (*ConfigurationResponse, error) {
	var cfg scanning.Configuration
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		cfg, err = repos.ConfigurationRepo().Get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ConfigurationResponse{LotCreation: string(cfg.LotCreation)}, nil
}

// UpdateConfiguration changes the lot creation policy. Batches already
// running keep the policy they started with.
func (s *ScanService) UpdateConfiguration(ctx context.Context, req UpdateConfigurationRequest) (*ConfigurationResponse, error) {
	policy, err := scanning.ParseLotCreationPolicy(req.LotCreation)
	if err != nil {
		return nil, err
	}
	var cfg scanning.Configuration
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.ConfigurationRepo().Get(ctx)
		if err != nil {
			return err
		}
		current.LotCreation = policy
		cfg = current
		return repos.ConfigurationRepo().Save(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("scanner configuration updated", zap.String("lot_creation", string(cfg.LotCreation)))
	return &ConfigurationResponse{LotCreation: string(cfg.LotCreation)}, nil
}

// publishDomainEvents publishes events after the transaction committed
func (s *ScanService) publishDomainEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish scan events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func (s *ScanService) forget(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *ScanService) record(ctx context.Context, direction, outcome string, applied decimal.Decimal, start time.Time) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordScan(ctx, direction, outcome, applied.InexactFloat64(), time.Since(start))
}

func (s *ScanService) recordAllocations(ctx context.Context, result *ScanResult, allocs []*scanning.Allocation, start time.Time) {
	outcome := OutcomeApplied
	if result.Absorbed {
		outcome = OutcomeAbsorbed
	}
	s.record(ctx, result.Direction, outcome, result.Applied, start)
	if s.recorder == nil {
		return
	}
	for _, alloc := range allocs {
		if alloc.CreatedLot != nil {
			s.recorder.RecordLotCreated(ctx, string(alloc.Direction))
		}
		if alloc.IsSplit() {
			s.recorder.RecordSplit(ctx, string(alloc.Direction))
		}
	}
}

func isClientError(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr)
}

func lotNumbers(ctx context.Context, lots scanning.LotReader, lines []*scanning.MoveLine) (map[uuid.UUID]*scanning.Lot, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.LotID != nil {
			ids = append(ids, *line.LotID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*scanning.Lot{}, nil
	}
	return lots.FindByIDs(ctx, ids)
}

func lotNumberOf(line *scanning.MoveLine, lots map[uuid.UUID]*scanning.Lot) string {
	if line.LotID == nil {
		return ""
	}
	if lot, ok := lots[*line.LotID]; ok {
		return lot.Number
	}
	return ""
}

func toResponses(lines []*scanning.MoveLine, lots map[uuid.UUID]*scanning.Lot) []MoveLineResponse {
	result := make([]MoveLineResponse, 0, len(lines))
	for _, line := range lines {
		result = append(result, ToMoveLineResponse(line, lotNumberOf(line, lots)))
	}
	return result
}
