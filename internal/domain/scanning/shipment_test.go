package scanning

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentType_Direction(t *testing.T) {
	tests := []struct {
		shipmentType ShipmentType
		expected     Direction
	}{
		{ShipmentTypeIn, DirectionIncoming},
		{ShipmentTypeInReturn, DirectionIncoming},
		{ShipmentTypeOut, DirectionOutgoing},
		{ShipmentTypeOutReturn, DirectionOutgoing},
	}
	for _, tt := range tests {
		t.Run(string(tt.shipmentType), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.shipmentType.Direction())
		})
	}
}

func TestShipment_NewShipment(t *testing.T) {
	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewShipment("SH-1", ShipmentType("transfer"))
		assert.Error(t, err)
	})

	t.Run("starts without scan", func(t *testing.T) {
		s, err := NewShipment("SH-1", ShipmentTypeIn)
		require.NoError(t, err)
		assert.False(t, s.HasPendingScan())
		_, ok := s.PendingScan()
		assert.False(t, ok)
	})
}

func TestShipment_ScanValues(t *testing.T) {
	s, err := NewShipment("SH-1", ShipmentTypeOut)
	require.NoError(t, err)

	lotID := uuid.New()
	price := decimal.NewFromInt(3)
	event := NewScanEvent(uuid.New(), decimal.NewFromInt(2), " ref ", &lotID, &price)
	s.RecordScan(event)

	got, ok := s.PendingScan()
	require.True(t, ok)
	assert.Equal(t, event.ProductID, got.ProductID)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "ref", got.LotRef)
	assert.Equal(t, lotID, *got.LotID)

	t.Run("clear resets every field", func(t *testing.T) {
		assert.True(t, s.ClearScanValues())
		assert.False(t, s.HasPendingScan())
		assert.Empty(t, s.ScannedLotRef)
		assert.Nil(t, s.ScannedLotID)
		assert.Nil(t, s.ScannedUnitPrice)
		assert.True(t, s.ScannedQuantity.IsZero())
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		assert.False(t, s.ClearScanValues())
	})
}

func TestScanEvent_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, NewScanEvent(uuid.New(), decimal.NewFromInt(1), "", nil, nil).Validate())
	})
	t.Run("zero quantity", func(t *testing.T) {
		assert.Error(t, NewScanEvent(uuid.New(), decimal.Zero, "", nil, nil).Validate())
	})
	t.Run("negative quantity", func(t *testing.T) {
		assert.Error(t, NewScanEvent(uuid.New(), decimal.NewFromInt(-1), "", nil, nil).Validate())
	})
	t.Run("missing product", func(t *testing.T) {
		assert.Error(t, NewScanEvent(uuid.Nil, decimal.NewFromInt(1), "", nil, nil).Validate())
	})
}

func TestLotCreationPolicy_Parse(t *testing.T) {
	p, err := ParseLotCreationPolicy("always")
	require.NoError(t, err)
	assert.Equal(t, LotCreationAlways, p)

	_, err = ParseLotCreationPolicy("never")
	assert.Error(t, err)

	assert.Equal(t, LotCreationSearchCreate, DefaultConfiguration().LotCreation)
}

func TestProductLotRequirement_Requires(t *testing.T) {
	req := ProductLotRequirement{ProductID: uuid.New(), LocationTypes: []LocationType{LocationTypeSupplier}}

	assert.True(t, req.Requires(LocationTypeSupplier, LocationTypeStorage))
	assert.True(t, req.Requires(LocationTypeStorage, LocationTypeSupplier))
	assert.False(t, req.Requires(LocationTypeStorage, LocationTypeCustomer))
}
