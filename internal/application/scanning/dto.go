package scanning

import (
	"time"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScanRequest is one scan submitted for a shipment
type ScanRequest struct {
	ProductID      uuid.UUID        `json:"product_id" binding:"required" swaggertype:"string" format:"uuid"`
	Quantity       decimal.Decimal  `json:"quantity" swaggertype:"string" example:"2"`
	LotRef         string           `json:"lot_ref" binding:"max=100"`
	LotID          *uuid.UUID       `json:"lot_id" swaggertype:"string" format:"uuid"`
	UnitPrice      *decimal.Decimal `json:"unit_price" swaggertype:"string" example:"2"`
	IdempotencyKey string           `json:"-"`
}

// ToEvent converts the request into a scan event
func (r ScanRequest) ToEvent() scanning.ScanEvent {
	return scanning.NewScanEvent(r.ProductID, r.Quantity, r.LotRef, r.LotID, r.UnitPrice)
}

// MoveLineResponse represents a move line in API responses
type MoveLineResponse struct {
	ID               uuid.UUID        `json:"id" swaggertype:"string" format:"uuid"`
	ShipmentID       uuid.UUID        `json:"shipment_id" swaggertype:"string" format:"uuid"`
	ProductID        uuid.UUID        `json:"product_id" swaggertype:"string" format:"uuid"`
	FromLocationID   uuid.UUID        `json:"from_location_id" swaggertype:"string" format:"uuid"`
	ToLocationID     uuid.UUID        `json:"to_location_id" swaggertype:"string" format:"uuid"`
	Quantity         decimal.Decimal  `json:"quantity" swaggertype:"string" example:"2"`
	ReceivedQuantity decimal.Decimal  `json:"received_quantity" swaggertype:"string" example:"2"`
	PendingQuantity  decimal.Decimal  `json:"pending_quantity" swaggertype:"string" example:"2"`
	LotID            *uuid.UUID       `json:"lot_id,omitempty" swaggertype:"string" format:"uuid"`
	LotNumber        string           `json:"lot_number,omitempty"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string" example:"2"`
	State            string           `json:"state"`
	Sequence         int64            `json:"sequence"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// LotResponse represents a lot in API responses
type LotResponse struct {
	ID          uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	ProductID   uuid.UUID `json:"product_id" swaggertype:"string" format:"uuid"`
	Number      string    `json:"number"`
	SupplierRef string    `json:"supplier_ref,omitempty"`
}

// ScanResult is the observable outcome of a scan
type ScanResult struct {
	ShipmentID   uuid.UUID          `json:"shipment_id" swaggertype:"string" format:"uuid"`
	Direction    string             `json:"direction" enums:"incoming,outgoing"`
	Absorbed     bool               `json:"absorbed"`
	Applied      decimal.Decimal    `json:"applied_quantity" swaggertype:"string" example:"2"`
	Line         *MoveLineResponse  `json:"line,omitempty"`
	Frozen       *MoveLineResponse  `json:"frozen_line,omitempty"`
	CreatedLot   *LotResponse       `json:"created_lot,omitempty"`
	PendingMoves []MoveLineResponse `json:"pending_moves"`
}

// ConfigurationResponse represents the scanning configuration
type ConfigurationResponse struct {
	LotCreation string `json:"lot_creation" enums:"search-create,always"`
}

// UpdateConfigurationRequest changes the lot creation policy
type UpdateConfigurationRequest struct {
	LotCreation string `json:"lot_creation" binding:"required,oneof=search-create always" enums:"search-create,always"`
}

// ToMoveLineResponse converts a move line; lotNumber may be empty
func ToMoveLineResponse(line *scanning.MoveLine, lotNumber string) MoveLineResponse {
	return MoveLineResponse{
		ID:               line.ID,
		ShipmentID:       line.ShipmentID,
		ProductID:        line.ProductID,
		FromLocationID:   line.FromLocationID,
		ToLocationID:     line.ToLocationID,
		Quantity:         line.Quantity,
		ReceivedQuantity: line.ReceivedQuantity,
		PendingQuantity:  line.PendingQuantity(),
		LotID:            line.LotID,
		LotNumber:        lotNumber,
		UnitPrice:        line.UnitPrice,
		State:            string(line.State),
		Sequence:         line.Sequence,
		CreatedAt:        line.CreatedAt,
		UpdatedAt:        line.UpdatedAt,
	}
}

// ToLotResponse converts a lot
func ToLotResponse(lot *scanning.Lot) *LotResponse {
	if lot == nil {
		return nil
	}
	return &LotResponse{
		ID:          lot.ID,
		ProductID:   lot.ProductID,
		Number:      lot.Number,
		SupplierRef: lot.SupplierRef,
	}
}
