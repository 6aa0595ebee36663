package scanning

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Matcher picks the move line a scan applies to.
// A nil line with a nil error means nothing is pending for the product.
type Matcher interface {
	Select(ctx context.Context, event ScanEvent, pending []*MoveLine) (*MoveLine, error)
}

// PendingForProduct returns the pending lines of the product in creation order
func PendingForProduct(lines []*MoveLine, productID uuid.UUID) []*MoveLine {
	result := make([]*MoveLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == productID && line.IsPending() {
			result = append(result, line)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})
	return result
}

// promote moves matching lines to the front, keeping relative order in both groups
func promote(lines []*MoveLine, match func(*MoveLine) bool) []*MoveLine {
	preferred := make([]*MoveLine, 0, len(lines))
	rest := make([]*MoveLine, 0, len(lines))
	for _, line := range lines {
		if match(line) {
			preferred = append(preferred, line)
		} else {
			rest = append(rest, line)
		}
	}
	return append(preferred, rest...)
}

func first(lines []*MoveLine) *MoveLine {
	if len(lines) == 0 {
		return nil
	}
	return lines[0]
}

// IncomingMatcher prefers lines whose lot number equals the scanned reference,
// so a re-scan keeps filling the same line
type IncomingMatcher struct {
	lots LotReader
}

// NewIncomingMatcher creates an incoming matcher reading lot numbers from lots
func NewIncomingMatcher(lots LotReader) *IncomingMatcher {
	return &IncomingMatcher{lots: lots}
}

// Rank returns the candidate order for the scan
func (m *IncomingMatcher) Rank(ctx context.Context, event ScanEvent, pending []*MoveLine) ([]*MoveLine, error) {
	candidates := PendingForProduct(pending, event.ProductID)
	if !event.HasLotRef() || len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, line := range candidates {
		if line.LotID != nil {
			ids = append(ids, *line.LotID)
		}
	}
	if len(ids) == 0 {
		return candidates, nil
	}
	lots, err := m.lots.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load lots of pending lines: %w", err)
	}

	return promote(candidates, func(line *MoveLine) bool {
		if line.LotID == nil {
			return false
		}
		lot, ok := lots[*line.LotID]
		return ok && lot.Number == event.LotRef
	}), nil
}

// Select returns the best candidate, or nil when nothing is pending
func (m *IncomingMatcher) Select(ctx context.Context, event ScanEvent, pending []*MoveLine) (*MoveLine, error) {
	ranked, err := m.Rank(ctx, event, pending)
	if err != nil {
		return nil, err
	}
	return first(ranked), nil
}

// OutgoingMatcher prefers lines already carrying the scanned lot
type OutgoingMatcher struct{}

// NewOutgoingMatcher creates an outgoing matcher
func NewOutgoingMatcher() *OutgoingMatcher {
	return &OutgoingMatcher{}
}

// Rank returns the candidate order for the scan
func (m *OutgoingMatcher) Rank(_ context.Context, event ScanEvent, pending []*MoveLine) ([]*MoveLine, error) {
	candidates := PendingForProduct(pending, event.ProductID)
	if !event.HasLotID() {
		return candidates, nil
	}
	lotID := *event.LotID
	return promote(candidates, func(line *MoveLine) bool {
		return line.CarriesLot(lotID)
	}), nil
}

// Select returns the best candidate, or nil when nothing is pending
func (m *OutgoingMatcher) Select(ctx context.Context, event ScanEvent, pending []*MoveLine) (*MoveLine, error) {
	ranked, err := m.Rank(ctx, event, pending)
	if err != nil {
		return nil, err
	}
	return first(ranked), nil
}

var (
	_ Matcher = (*IncomingMatcher)(nil)
	_ Matcher = (*OutgoingMatcher)(nil)
)
