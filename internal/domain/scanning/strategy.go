package scanning

import (
	"context"

	"github.com/erp/stockscan/internal/domain/shared"
)

// ShipmentStrategy is the scanning behaviour of one shipment direction.
// Implementations hold no state; collaborators are passed per call.
type ShipmentStrategy interface {
	// Direction returns the direction the strategy serves
	Direction() Direction
	// Match selects the pending line the scan applies to, nil when none
	Match(ctx context.Context, c Collaborators, event ScanEvent, pending []*MoveLine) (*MoveLine, error)
	// Allocate applies the scan to the matched line
	Allocate(ctx context.Context, c Collaborators, line *MoveLine, event ScanEvent, cfg Configuration) (*Allocation, error)
}

// IncomingStrategy scans receipts and returns to supplier
type IncomingStrategy struct{}

// Direction returns DirectionIncoming
func (IncomingStrategy) Direction() Direction {
	return DirectionIncoming
}

// Match promotes lines carrying the scanned lot reference
func (IncomingStrategy) Match(ctx context.Context, c Collaborators, event ScanEvent, pending []*MoveLine) (*MoveLine, error) {
	return NewIncomingMatcher(c.Lots).Select(ctx, event, pending)
}

// Allocate resolves the lot under the configured policy and applies the scan
func (IncomingStrategy) Allocate(ctx context.Context, c Collaborators, line *MoveLine, event ScanEvent, cfg Configuration) (*Allocation, error) {
	return NewAllocator(c).ApplyIncoming(ctx, line, event, cfg)
}

// OutgoingStrategy scans deliveries and customer returns
type OutgoingStrategy struct{}

// Direction returns DirectionOutgoing
func (OutgoingStrategy) Direction() Direction {
	return DirectionOutgoing
}

// Match promotes lines carrying the scanned lot
func (OutgoingStrategy) Match(ctx context.Context, _ Collaborators, event ScanEvent, pending []*MoveLine) (*MoveLine, error) {
	return NewOutgoingMatcher().Select(ctx, event, pending)
}

// Allocate applies the scan; the configuration does not apply to outgoing lines
func (OutgoingStrategy) Allocate(ctx context.Context, c Collaborators, line *MoveLine, event ScanEvent, _ Configuration) (*Allocation, error) {
	return NewAllocator(c).ApplyOutgoing(ctx, line, event)
}

// StrategyRegistry maps shipment types to their shared strategy
type StrategyRegistry struct {
	strategies map[ShipmentType]ShipmentStrategy
}

// NewStrategyRegistry creates a registry where return types reuse the
// strategy of their forward counterpart
func NewStrategyRegistry() *StrategyRegistry {
	incoming := IncomingStrategy{}
	outgoing := OutgoingStrategy{}
	r := &StrategyRegistry{strategies: make(map[ShipmentType]ShipmentStrategy, 4)}
	for _, t := range []ShipmentType{ShipmentTypeIn, ShipmentTypeInReturn} {
		r.strategies[t] = incoming
	}
	for _, t := range []ShipmentType{ShipmentTypeOut, ShipmentTypeOutReturn} {
		r.strategies[t] = outgoing
	}
	return r
}

// Register replaces the strategy of a shipment type
func (r *StrategyRegistry) Register(t ShipmentType, s ShipmentStrategy) {
	r.strategies[t] = s
}

// For returns the strategy of a shipment type
func (r *StrategyRegistry) For(t ShipmentType) (ShipmentStrategy, error) {
	s, ok := r.strategies[t]
	if !ok {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_TYPE", "No scanning strategy for shipment type: "+string(t))
	}
	return s, nil
}

var (
	_ ShipmentStrategy = IncomingStrategy{}
	_ ShipmentStrategy = OutgoingStrategy{}
)
