package models

import (
	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentModel is the persistence model for the Shipment entity.
type ShipmentModel struct {
	BaseModel
	Reference        string           `gorm:"type:varchar(100);not null;index"`
	Type             string           `gorm:"type:varchar(20);not null"`
	ScannedProductID *uuid.UUID       `gorm:"type:uuid"`
	ScannedQuantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ScannedLotRef    string           `gorm:"type:varchar(100);not null;default:''"`
	ScannedLotID     *uuid.UUID       `gorm:"type:uuid"`
	ScannedUnitPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment entity.
func (m *ShipmentModel) ToDomain() *scanning.Shipment {
	return &scanning.Shipment{
		BaseEntity:       m.BaseModel.entity(),
		Reference:        m.Reference,
		Type:             scanning.ShipmentType(m.Type),
		ScannedProductID: m.ScannedProductID,
		ScannedQuantity:  m.ScannedQuantity,
		ScannedLotRef:    m.ScannedLotRef,
		ScannedLotID:     m.ScannedLotID,
		ScannedUnitPrice: m.ScannedUnitPrice,
	}
}

// ShipmentModelFromDomain creates a persistence model from a domain Shipment entity.
func ShipmentModelFromDomain(s *scanning.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		Reference:        s.Reference,
		Type:             string(s.Type),
		ScannedProductID: s.ScannedProductID,
		ScannedQuantity:  s.ScannedQuantity,
		ScannedLotRef:    s.ScannedLotRef,
		ScannedLotID:     s.ScannedLotID,
		ScannedUnitPrice: s.ScannedUnitPrice,
	}
	m.BaseModel = baseModelOf(s.BaseEntity)
	return m
}

// MoveLineModel is the persistence model for the MoveLine entity.
type MoveLineModel struct {
	BaseModel
	ShipmentID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_move_lines_shipment_sequence,priority:1"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	FromLocationID   uuid.UUID        `gorm:"type:uuid;not null"`
	ToLocationID     uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	LotID            *uuid.UUID       `gorm:"type:uuid;index"`
	UnitPrice        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	State            string           `gorm:"type:varchar(20);not null;default:'draft'"`
	Sequence         int64            `gorm:"not null;index:idx_move_lines_shipment_sequence,priority:2"`
}

// TableName returns the table name for GORM
func (MoveLineModel) TableName() string {
	return "move_lines"
}

// ToDomain converts the persistence model to a domain MoveLine entity.
func (m *MoveLineModel) ToDomain() *scanning.MoveLine {
	return &scanning.MoveLine{
		BaseEntity:       m.BaseModel.entity(),
		ShipmentID:       m.ShipmentID,
		ProductID:        m.ProductID,
		FromLocationID:   m.FromLocationID,
		ToLocationID:     m.ToLocationID,
		Quantity:         m.Quantity,
		ReceivedQuantity: m.ReceivedQuantity,
		LotID:            m.LotID,
		UnitPrice:        m.UnitPrice,
		State:            scanning.MoveState(m.State),
		Sequence:         m.Sequence,
	}
}

// MoveLineModelFromDomain creates a persistence model from a domain MoveLine entity.
func MoveLineModelFromDomain(l *scanning.MoveLine) *MoveLineModel {
	m := &MoveLineModel{
		ShipmentID:       l.ShipmentID,
		ProductID:        l.ProductID,
		FromLocationID:   l.FromLocationID,
		ToLocationID:     l.ToLocationID,
		Quantity:         l.Quantity,
		ReceivedQuantity: l.ReceivedQuantity,
		LotID:            l.LotID,
		UnitPrice:        l.UnitPrice,
		State:            string(l.State),
		Sequence:         l.Sequence,
	}
	m.BaseModel = baseModelOf(l.BaseEntity)
	return m
}

// LotModel is the persistence model for the Lot entity.
type LotModel struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Number      string    `gorm:"type:varchar(100);not null"`
	SupplierRef string    `gorm:"type:varchar(100);not null;default:'';index"`
}

// TableName returns the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// ToDomain converts the persistence model to a domain Lot entity.
func (m *LotModel) ToDomain() *scanning.Lot {
	return &scanning.Lot{
		BaseEntity:  m.BaseModel.entity(),
		ProductID:   m.ProductID,
		Number:      m.Number,
		SupplierRef: m.SupplierRef,
	}
}

// LotModelFromDomain creates a persistence model from a domain Lot entity.
func LotModelFromDomain(l *scanning.Lot) *LotModel {
	m := &LotModel{
		ProductID:   l.ProductID,
		Number:      l.Number,
		SupplierRef: l.SupplierRef,
	}
	m.BaseModel = baseModelOf(l.BaseEntity)
	return m
}

// LocationModel is the persistence model for the Location entity.
type LocationModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null"`
	Type string `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location entity.
func (m *LocationModel) ToDomain() *scanning.Location {
	return &scanning.Location{
		BaseEntity: m.BaseModel.entity(),
		Name:       m.Name,
		Type:       scanning.LocationType(m.Type),
	}
}

// LocationModelFromDomain creates a persistence model from a domain Location entity.
func LocationModelFromDomain(l *scanning.Location) *LocationModel {
	m := &LocationModel{Name: l.Name, Type: string(l.Type)}
	m.BaseModel = baseModelOf(l.BaseEntity)
	return m
}

// ProductLotRequirementModel is one location type for which a product's moves need a lot.
type ProductLotRequirementModel struct {
	ProductID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationType string    `gorm:"type:varchar(20);primaryKey"`
}

// TableName returns the table name for GORM
func (ProductLotRequirementModel) TableName() string {
	return "product_lot_requirements"
}

// ProductLotRequirementModelsFromDomain expands a requirement into one row per location type.
func ProductLotRequirementModelsFromDomain(r scanning.ProductLotRequirement) []ProductLotRequirementModel {
	rows := make([]ProductLotRequirementModel, 0, len(r.LocationTypes))
	for _, t := range r.LocationTypes {
		rows = append(rows, ProductLotRequirementModel{ProductID: r.ProductID, LocationType: string(t)})
	}
	return rows
}

// ScannerConfigurationModel is the persistence model for the scanning Configuration.
// The table holds at most one row.
type ScannerConfigurationModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	LotCreation string    `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ScannerConfigurationModel) TableName() string {
	return "scanner_configurations"
}

// ToDomain converts the persistence model to a domain Configuration.
func (m *ScannerConfigurationModel) ToDomain() scanning.Configuration {
	return scanning.Configuration{
		ID:          m.ID,
		LotCreation: scanning.LotCreationPolicy(m.LotCreation),
	}
}

// All lists every scanning model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&ShipmentModel{},
		&LocationModel{},
		&LotModel{},
		&MoveLineModel{},
		&ProductLotRequirementModel{},
		&ScannerConfigurationModel{},
	}
}
