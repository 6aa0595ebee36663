package scanning

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLotReader struct {
	mock.Mock
}

func (m *MockLotReader) FindByID(ctx context.Context, id uuid.UUID) (*Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lot), args.Error(1)
}

func (m *MockLotReader) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Lot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*Lot), args.Error(1)
}

// linesFor builds pending lines of one product with increasing sequence
func linesFor(productID uuid.UUID, n int) []*MoveLine {
	shipmentID := uuid.New()
	lines := make([]*MoveLine, n)
	for i := range lines {
		line, _ := NewMoveLine(shipmentID, productID, uuid.New(), uuid.New(), decimal.NewFromInt(10))
		line.Sequence = int64(i + 1)
		lines[i] = line
	}
	return lines
}

func attachLot(line *MoveLine, productID uuid.UUID, number string) *Lot {
	lot, _ := NewLot(productID, number, "")
	id := lot.ID
	line.LotID = &id
	return lot
}

func TestPendingForProduct(t *testing.T) {
	productID := uuid.New()
	lines := linesFor(productID, 3)
	other, _ := NewMoveLine(uuid.New(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(1))
	lines[1].ReceivedQuantity = lines[1].Quantity

	shuffled := []*MoveLine{lines[2], other, lines[1], lines[0]}
	got := PendingForProduct(shuffled, productID)

	require.Len(t, got, 2)
	assert.Equal(t, lines[0].ID, got[0].ID)
	assert.Equal(t, lines[2].ID, got[1].ID)
}

func TestIncomingMatcher_Select(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("returns nil when nothing is pending", func(t *testing.T) {
		m := NewIncomingMatcher(new(MockLotReader))
		got, err := m.Select(ctx, ScanEvent{ProductID: productID, Quantity: decimal.NewFromInt(1)}, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("first pending line without lot reference", func(t *testing.T) {
		lots := new(MockLotReader)
		lines := linesFor(productID, 2)
		got, err := NewIncomingMatcher(lots).Select(ctx, ScanEvent{ProductID: productID, Quantity: decimal.NewFromInt(1)}, lines)
		require.NoError(t, err)
		assert.Equal(t, lines[0].ID, got.ID)
		lots.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("promotes lines whose lot number matches, stable otherwise", func(t *testing.T) {
		lines := linesFor(productID, 4)
		lotA := attachLot(lines[0], productID, "A")
		lot2a := attachLot(lines[1], productID, "2")
		lot2b := attachLot(lines[3], productID, "2")

		lots := new(MockLotReader)
		lots.On("FindByIDs", ctx, mock.Anything).Return(map[uuid.UUID]*Lot{
			lotA.ID: lotA, lot2a.ID: lot2a, lot2b.ID: lot2b,
		}, nil)

		ranked, err := NewIncomingMatcher(lots).Rank(ctx, ScanEvent{ProductID: productID, Quantity: decimal.NewFromInt(1), LotRef: "2"}, lines)
		require.NoError(t, err)
		require.Len(t, ranked, 4)
		assert.Equal(t, lines[1].ID, ranked[0].ID)
		assert.Equal(t, lines[3].ID, ranked[1].ID)
		assert.Equal(t, lines[0].ID, ranked[2].ID)
		assert.Equal(t, lines[2].ID, ranked[3].ID)
	})

	t.Run("propagates lot read failure", func(t *testing.T) {
		lines := linesFor(productID, 1)
		attachLot(lines[0], productID, "A")
		lots := new(MockLotReader)
		lots.On("FindByIDs", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := NewIncomingMatcher(lots).Select(ctx, ScanEvent{ProductID: productID, Quantity: decimal.NewFromInt(1), LotRef: "A"}, lines)
		assert.Error(t, err)
	})
}

func TestOutgoingMatcher_Select(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	lines := linesFor(productID, 3)
	lot := attachLot(lines[2], productID, "00002")

	t.Run("promotes line carrying the scanned lot", func(t *testing.T) {
		lotID := lot.ID
		got, err := NewOutgoingMatcher().Select(ctx, ScanEvent{ProductID: productID, Quantity: decimal.NewFromInt(1), LotID: &lotID}, lines)
		require.NoError(t, err)
		assert.Equal(t, lines[2].ID, got.ID)
	})

	t.Run("first line when scanned lot is on no line", func(t *testing.T) {
		other := uuid.New()
		got, err := NewOutgoingMatcher().Select(ctx, ScanEvent{ProductID: productID, Quantity: decimal.NewFromInt(1), LotID: &other}, lines)
		require.NoError(t, err)
		assert.Equal(t, lines[0].ID, got.ID)
	})

	t.Run("ignores other products", func(t *testing.T) {
		got, err := NewOutgoingMatcher().Select(ctx, ScanEvent{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)}, lines)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
