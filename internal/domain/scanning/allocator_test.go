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

type MockMoveLineRepository struct {
	mock.Mock
}

func (m *MockMoveLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*MoveLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MoveLine), args.Error(1)
}

func (m *MockMoveLineRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*MoveLine, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).([]*MoveLine), args.Error(1)
}

func (m *MockMoveLineRepository) FindPendingByShipmentAndProduct(ctx context.Context, shipmentID, productID uuid.UUID) ([]*MoveLine, error) {
	args := m.Called(ctx, shipmentID, productID)
	return args.Get(0).([]*MoveLine), args.Error(1)
}

func (m *MockMoveLineRepository) Create(ctx context.Context, line *MoveLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockMoveLineRepository) Save(ctx context.Context, line *MoveLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockMoveLineRepository) CopyWithOverrides(ctx context.Context, line *MoveLine, overrides MoveOverrides) (*MoveLine, error) {
	args := m.Called(ctx, line, overrides)
	if fn, ok := args.Get(0).(func(context.Context, *MoveLine, MoveOverrides) *MoveLine); ok {
		return fn(ctx, line, overrides), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MoveLine), args.Error(1)
}

type MockLotRepository struct {
	MockLotReader
}

func (m *MockLotRepository) SearchBySupplierRef(ctx context.Context, ref string) ([]*Lot, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Lot), args.Error(1)
}

func (m *MockLotRepository) Create(ctx context.Context, lot *Lot) error {
	return m.Called(ctx, lot).Error(0)
}

type MockLotRequirement struct {
	mock.Mock
}

func (m *MockLotRequirement) LotIsRequired(ctx context.Context, productID, fromLocationID, toLocationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, fromLocationID, toLocationID)
	return args.Bool(0), args.Error(1)
}

func newMockAllocator() (*Allocator, *MockMoveLineRepository, *MockLotRepository, *MockLotRequirement) {
	moves := new(MockMoveLineRepository)
	lots := new(MockLotRepository)
	req := new(MockLotRequirement)
	return NewAllocator(Collaborators{Moves: moves, Lots: lots, Requirement: req}), moves, lots, req
}

func TestAllocator_ApplyIncoming_Errors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	t.Run("lot requirement failure propagates", func(t *testing.T) {
		allocator, moves, _, req := newMockAllocator()
		line := newTestLine(t, 5)
		req.On("LotIsRequired", ctx, line.ProductID, line.FromLocationID, line.ToLocationID).Return(false, dbErr)

		_, err := allocator.ApplyIncoming(ctx, line, ScanEvent{ProductID: line.ProductID, Quantity: decimal.NewFromInt(1)}, DefaultConfiguration())

		assert.ErrorIs(t, err, dbErr)
		moves.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("lot creation failure propagates before the line is touched", func(t *testing.T) {
		allocator, moves, lots, req := newMockAllocator()
		line := newTestLine(t, 5)
		req.On("LotIsRequired", ctx, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		lots.On("SearchBySupplierRef", ctx, "R1").Return([]*Lot{}, nil)
		lots.On("Create", ctx, mock.AnythingOfType("*scanning.Lot")).Return(dbErr)

		_, err := allocator.ApplyIncoming(ctx, line, ScanEvent{ProductID: line.ProductID, Quantity: decimal.NewFromInt(1), LotRef: "R1"}, DefaultConfiguration())

		assert.ErrorIs(t, err, dbErr)
		assert.True(t, line.ReceivedQuantity.IsZero())
		moves.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("split copy failure propagates", func(t *testing.T) {
		allocator, moves, _, _ := newMockAllocator()
		line := newTestLine(t, 5)
		lotA := uuid.New()
		require.NoError(t, line.Receive(decimal.NewFromInt(1), &lotA, nil))
		lotB := uuid.New()

		moves.On("Save", ctx, line).Return(nil)
		moves.On("CopyWithOverrides", ctx, line, mock.Anything).Return(nil, dbErr)

		_, err := allocator.ApplyOutgoing(ctx, line, ScanEvent{ProductID: line.ProductID, Quantity: decimal.NewFromInt(1), LotID: &lotB})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAllocator_ApplyIncoming_SplitOverrides(t *testing.T) {
	ctx := context.Background()
	allocator, moves, lots, req := newMockAllocator()

	line := newTestLine(t, 10)
	line.State = MoveStateAssigned
	oldLot := uuid.New()
	require.NoError(t, line.Receive(decimal.NewFromInt(3), &oldLot, nil))

	found, err := NewLot(line.ProductID, "N-2", "SUP-2")
	require.NoError(t, err)

	req.On("LotIsRequired", ctx, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	lots.On("SearchBySupplierRef", ctx, "SUP-2").Return([]*Lot{found}, nil)
	moves.On("Save", ctx, mock.Anything).Return(nil)

	var captured MoveOverrides
	moves.On("CopyWithOverrides", ctx, line, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).(MoveOverrides) }).
		Return(func(_ context.Context, src *MoveLine, o MoveOverrides) *MoveLine { return o.Apply(src) }, nil)

	alloc, err := allocator.ApplyIncoming(ctx, line, ScanEvent{ProductID: line.ProductID, Quantity: decimal.NewFromInt(2), LotRef: "SUP-2"}, DefaultConfiguration())
	require.NoError(t, err)

	require.NotNil(t, captured.Quantity)
	assert.True(t, captured.Quantity.Equal(decimal.NewFromInt(7)))
	require.NotNil(t, captured.ReceivedQuantity)
	assert.True(t, captured.ReceivedQuantity.IsZero())
	assert.True(t, captured.ClearLot)
	require.NotNil(t, captured.State)
	assert.Equal(t, MoveStateAssigned, *captured.State)

	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, alloc.Line.CarriesLot(found.ID))
	assert.True(t, alloc.Line.ReceivedQuantity.Equal(decimal.NewFromInt(2)))
	assert.Len(t, alloc.Events(), 2)
	lots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
