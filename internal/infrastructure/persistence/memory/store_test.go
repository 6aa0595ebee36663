package memory

import (
	"context"
	"errors"
	"testing"

	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLine(t *testing.T, shipmentID, productID uuid.UUID, qty int64) *scanning.MoveLine {
	t.Helper()
	line, err := scanning.NewMoveLine(shipmentID, productID, uuid.New(), uuid.New(), decimal.NewFromInt(qty))
	require.NoError(t, err)
	return line
}

func TestMoveLineRepository_SequenceAndFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.MoveLines()
	shipmentID, productID := uuid.New(), uuid.New()

	first := newLine(t, shipmentID, productID, 5)
	second := newLine(t, shipmentID, uuid.New(), 3)
	third := newLine(t, shipmentID, productID, 2)
	other := newLine(t, uuid.New(), productID, 1)
	for _, l := range []*scanning.MoveLine{first, second, third, other} {
		require.NoError(t, repo.Create(ctx, l))
	}
	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(3), third.Sequence)
	assert.ErrorIs(t, repo.Create(ctx, first), shared.ErrAlreadyExists)

	third.ReceivedQuantity = decimal.NewFromInt(2)
	require.NoError(t, repo.Save(ctx, third))

	all, err := repo.FindByShipment(ctx, shipmentID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	pending, err := repo.FindPendingByShipmentAndProduct(ctx, shipmentID, productID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Save(ctx, newLine(t, shipmentID, productID, 1)), shared.ErrNotFound)
}

func TestMoveLineRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().MoveLines()
	line := newLine(t, uuid.New(), uuid.New(), 4)
	require.NoError(t, repo.Create(ctx, line))

	line.ReceivedQuantity = decimal.NewFromInt(4)
	loaded, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.True(t, loaded.ReceivedQuantity.IsZero())

	loaded.Quantity = decimal.NewFromInt(100)
	again, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.True(t, again.Quantity.Equal(decimal.NewFromInt(4)))
}

func TestMoveLineRepository_CopyWithOverrides(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().MoveLines()
	lotID := uuid.New()
	line := newLine(t, uuid.New(), uuid.New(), 10)
	line.LotID = &lotID
	require.NoError(t, repo.Create(ctx, line))

	remainder := decimal.NewFromInt(6)
	zero := decimal.Zero
	dup, err := repo.CopyWithOverrides(ctx, line, scanning.MoveOverrides{
		Quantity:         &remainder,
		ReceivedQuantity: &zero,
		ClearLot:         true,
	})
	require.NoError(t, err)

	assert.NotEqual(t, line.ID, dup.ID)
	assert.Equal(t, int64(2), dup.Sequence)
	assert.True(t, dup.Quantity.Equal(remainder))
	assert.Nil(t, dup.LotID)

	stored, err := repo.FindByID(ctx, dup.ID)
	require.NoError(t, err)
	assert.Equal(t, line.ShipmentID, stored.ShipmentID)

	_, err = repo.CopyWithOverrides(ctx, newLine(t, uuid.New(), uuid.New(), 1), scanning.MoveOverrides{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Lots()
	productID := uuid.New()

	a, err := scanning.NewLot(productID, "A", "REF")
	require.NoError(t, err)
	b, err := scanning.NewLot(uuid.New(), "B", "REF")
	require.NoError(t, err)
	c, err := scanning.NewLot(productID, "C", "")
	require.NoError(t, err)
	for _, lot := range []*scanning.Lot{a, b, c} {
		require.NoError(t, repo.Create(ctx, lot))
	}
	assert.ErrorIs(t, repo.Create(ctx, a), shared.ErrAlreadyExists)

	found, err := repo.SearchBySupplierRef(ctx, "REF")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, a.ID, found[0].ID)
	assert.Equal(t, b.ID, found[1].ID)

	none, err := repo.SearchBySupplierRef(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	byID, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, uuid.New(), c.ID})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "C", byID[c.ID].Number)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestShipmentAndConfigurationRepositories(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	shipment, err := scanning.NewShipment("IN/001", scanning.ShipmentTypeIn)
	require.NoError(t, err)
	shipment.RecordScan(scanning.NewScanEvent(uuid.New(), decimal.NewFromInt(1), "L1", nil, nil))
	require.NoError(t, store.Shipments().Save(ctx, shipment))

	loaded, err := store.Shipments().FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasPendingScan())
	*loaded.ScannedProductID = uuid.Nil

	again, err := store.Shipments().FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, *again.ScannedProductID)

	cfg, err := store.Configuration().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, scanning.LotCreationSearchCreate, cfg.LotCreation)

	cfg.LotCreation = scanning.LotCreationAlways
	require.NoError(t, store.Configuration().Save(ctx, cfg))
	cfg, err = store.Configuration().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, scanning.LotCreationAlways, cfg.LotCreation)

	cfg.LotCreation = "sometimes"
	assert.Error(t, store.Configuration().Save(ctx, cfg))
}

func TestRequirementTable(t *testing.T) {
	ctx := context.Background()
	table := NewStore().Requirements()

	supplier, err := scanning.NewLocation("Supplier", scanning.LocationTypeSupplier)
	require.NoError(t, err)
	storage, err := scanning.NewLocation("Stock", scanning.LocationTypeStorage)
	require.NoError(t, err)
	table.SaveLocation(supplier)
	table.SaveLocation(storage)

	productID := uuid.New()
	table.SetRequirement(scanning.ProductLotRequirement{
		ProductID:     productID,
		LocationTypes: []scanning.LocationType{scanning.LocationTypeSupplier},
	})

	required, err := table.LotIsRequired(ctx, productID, supplier.ID, storage.ID)
	require.NoError(t, err)
	assert.True(t, required)

	required, err = table.LotIsRequired(ctx, productID, storage.ID, storage.ID)
	require.NoError(t, err)
	assert.False(t, required)

	required, err = table.LotIsRequired(ctx, uuid.New(), supplier.ID, storage.ID)
	require.NoError(t, err)
	assert.False(t, required)
}

func TestStore_AtomicallyRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	kept := newLine(t, uuid.New(), uuid.New(), 3)
	require.NoError(t, store.MoveLines().Create(ctx, kept))

	boom := errors.New("boom")
	err := store.Atomically(ctx, func(ctx context.Context) error {
		kept.ReceivedQuantity = decimal.NewFromInt(3)
		require.NoError(t, store.MoveLines().Save(ctx, kept))
		require.NoError(t, store.MoveLines().Create(ctx, newLine(t, kept.ShipmentID, kept.ProductID, 1)))
		lot, lerr := scanning.NewLot(kept.ProductID, "X", "X")
		require.NoError(t, lerr)
		require.NoError(t, store.Lots().Create(ctx, lot))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	lines, err := store.MoveLines().FindByShipment(ctx, kept.ShipmentID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].ReceivedQuantity.IsZero())

	lots, err := store.Lots().SearchBySupplierRef(ctx, "X")
	require.NoError(t, err)
	assert.Empty(t, lots)

	next := newLine(t, kept.ShipmentID, kept.ProductID, 1)
	require.NoError(t, store.MoveLines().Create(ctx, next))
	assert.Equal(t, int64(2), next.Sequence)
}

func TestTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	scope := NewTransactionScope(store)

	shipment, err := scanning.NewShipment("OUT/001", scanning.ShipmentTypeOut)
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos appscan.TransactionalRepositories) error {
		return repos.ShipmentRepo().Save(ctx, shipment)
	})
	require.NoError(t, err)

	_, err = store.Shipments().FindByID(ctx, shipment.ID)
	assert.NoError(t, err)
}
