package event

import (
	"context"
	"testing"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScanJournal_LogsScanningEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	journal := NewScanJournal(zap.New(core))
	bus := startedBus(t)
	bus.Subscribe(journal)

	productID := uuid.New()
	lot, err := scanning.NewLot(productID, "SUP-1", "SUP-1")
	require.NoError(t, err)
	line, err := scanning.NewMoveLine(uuid.New(), productID, uuid.New(), uuid.New(), decimal.NewFromInt(5))
	require.NoError(t, err)
	line.LotID = &lot.ID

	event := scanning.NewScanEvent(productID, decimal.NewFromInt(2), "", nil, nil)
	require.NoError(t, bus.Publish(context.Background(),
		scanning.NewLotCreatedEvent(lot),
		scanning.NewScanAppliedEvent(line, scanning.DirectionIncoming, decimal.NewFromInt(2)),
		scanning.NewScanAbsorbedEvent(line.ShipmentID, event),
		newTestEvent("Unrelated"),
	))

	assert.Equal(t, 1, journal.Count(scanning.EventTypeLotCreated))
	assert.Equal(t, 1, journal.Count(scanning.EventTypeScanApplied))
	assert.Equal(t, 1, journal.Count(scanning.EventTypeScanAbsorbed))
	assert.Equal(t, 0, journal.Count("Unrelated"))

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "SUP-1", logs.All()[0].ContextMap()["lot_number"])
	applied := logs.All()[1].ContextMap()
	assert.Equal(t, "incoming", applied["direction"])
	assert.Equal(t, lot.ID.String(), applied["lot_id"])
}
