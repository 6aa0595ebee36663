package persistence

import (
	"context"
	"testing"

	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedShipment(t *testing.T, db *gorm.DB, shipmentType scanning.ShipmentType, productID uuid.UUID, qty int64) (*scanning.Shipment, *scanning.MoveLine) {
	t.Helper()
	ctx := context.Background()
	shipment, err := scanning.NewShipment("SHP-1", shipmentType)
	require.NoError(t, err)
	require.NoError(t, NewGormShipmentRepository(db).Save(ctx, shipment))
	line := newMoveLine(t, shipment.ID, productID, qty)
	require.NoError(t, NewGormMoveLineRepository(db).Create(ctx, line))
	return shipment, line
}

func TestScanService_IncomingSplitOverGorm(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	service := appscan.NewScanService(NewGormTransactionScope(db), nil)
	productID := uuid.New()
	shipment, line := seedShipment(t, db, scanning.ShipmentTypeIn, productID, 10)

	first, err := service.Scan(ctx, shipment.ID, appscan.ScanRequest{ProductID: productID, Quantity: decimal.NewFromInt(4), LotRef: "SUP-1"})
	require.NoError(t, err)
	require.NotNil(t, first.CreatedLot)

	second, err := service.Scan(ctx, shipment.ID, appscan.ScanRequest{ProductID: productID, Quantity: decimal.NewFromInt(3), LotRef: "SUP-2"})
	require.NoError(t, err)
	require.NotNil(t, second.Frozen)
	assert.Equal(t, line.ID, second.Frozen.ID)
	assert.True(t, second.Frozen.Quantity.Equal(decimal.NewFromInt(4)))
	require.NotNil(t, second.Line)
	assert.Equal(t, int64(2), second.Line.Sequence)
	assert.True(t, second.Line.Quantity.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "SUP-2", second.Line.LotNumber)

	moves, err := service.Moves(ctx, shipment.ID)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.True(t, moves[0].Quantity.Add(moves[1].Quantity).Equal(decimal.NewFromInt(10)))

	stored, err := NewGormShipmentRepository(db).FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPendingScan())
}

func TestScanService_SearchCreateReusesLotAcrossShipments(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	service := appscan.NewScanService(NewGormTransactionScope(db), nil)
	productID := uuid.New()
	a, _ := seedShipment(t, db, scanning.ShipmentTypeIn, productID, 5)
	b, _ := seedShipment(t, db, scanning.ShipmentTypeIn, productID, 5)

	first, err := service.Scan(ctx, a.ID, appscan.ScanRequest{ProductID: productID, Quantity: decimal.NewFromInt(5), LotRef: "SUP-9"})
	require.NoError(t, err)
	require.NotNil(t, first.CreatedLot)

	second, err := service.Scan(ctx, b.ID, appscan.ScanRequest{ProductID: productID, Quantity: decimal.NewFromInt(2), LotRef: "SUP-9"})
	require.NoError(t, err)
	assert.Nil(t, second.CreatedLot)
	require.NotNil(t, second.Line.LotID)
	assert.Equal(t, first.CreatedLot.ID, *second.Line.LotID)

	lots, err := NewGormLotRepository(db).SearchBySupplierRef(ctx, "SUP-9")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestScanService_FailedScanRollsBackOverGorm(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t).DB
	service := appscan.NewScanService(NewGormTransactionScope(db), nil)
	productID := uuid.New()
	shipment, line := seedShipment(t, db, scanning.ShipmentTypeOut, productID, 5)

	otherLot, err := scanning.NewLot(uuid.New(), "FOREIGN", "")
	require.NoError(t, err)
	require.NoError(t, NewGormLotRepository(db).Create(ctx, otherLot))

	_, err = service.Scan(ctx, shipment.ID, appscan.ScanRequest{ProductID: productID, Quantity: decimal.NewFromInt(1), LotID: &otherLot.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	stored, err := NewGormMoveLineRepository(db).FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedQuantity.IsZero())
	shipmentRow, err := NewGormShipmentRepository(db).FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.False(t, shipmentRow.HasPendingScan())
}
