package persistence

import (
	"context"
	"errors"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/erp/stockscan/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMoveLineRepository implements MoveLineRepository using GORM
type GormMoveLineRepository struct {
	db *gorm.DB
}

// NewGormMoveLineRepository creates a new GormMoveLineRepository
func NewGormMoveLineRepository(db *gorm.DB) *GormMoveLineRepository {
	return &GormMoveLineRepository{db: db}
}

// FindByID finds a move line by its ID
func (r *GormMoveLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*scanning.MoveLine, error) {
	var model models.MoveLineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByShipment returns every line of the shipment in creation order
func (r *GormMoveLineRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*scanning.MoveLine, error) {
	return r.find(r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID))
}

// FindPendingByShipmentAndProduct returns the open lines of the product that
// still expect a quantity, in creation order
func (r *GormMoveLineRepository) FindPendingByShipmentAndProduct(ctx context.Context, shipmentID, productID uuid.UUID) ([]*scanning.MoveLine, error) {
	return r.find(r.db.WithContext(ctx).
		Where("shipment_id = ? AND product_id = ?", shipmentID, productID).
		Where("state IN ?", []string{string(scanning.MoveStateDraft), string(scanning.MoveStateAssigned)}).
		Where("received_quantity < quantity"))
}

func (r *GormMoveLineRepository) find(query *gorm.DB) ([]*scanning.MoveLine, error) {
	var rows []models.MoveLineModel
	if err := query.Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]*scanning.MoveLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// Create persists a new line at the end of its shipment's sequence
func (r *GormMoveLineRepository) Create(ctx context.Context, line *scanning.MoveLine) error {
	db := r.db.WithContext(ctx)
	var last int64
	if err := db.Model(&models.MoveLineModel{}).
		Where("shipment_id = ?", line.ShipmentID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	line.Sequence = last + 1
	return db.Create(models.MoveLineModelFromDomain(line)).Error
}

// Save updates every column of an existing line
func (r *GormMoveLineRepository) Save(ctx context.Context, line *scanning.MoveLine) error {
	model := models.MoveLineModelFromDomain(line)
	result := r.db.WithContext(ctx).Model(model).
		Select("*").
		Omit("id", "created_at", "sequence").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CopyWithOverrides persists a copy of the line with the overridden fields
func (r *GormMoveLineRepository) CopyWithOverrides(ctx context.Context, line *scanning.MoveLine, overrides scanning.MoveOverrides) (*scanning.MoveLine, error) {
	if _, err := r.FindByID(ctx, line.ID); err != nil {
		return nil, err
	}
	dup := overrides.Apply(line)
	if err := r.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

var _ scanning.MoveLineRepository = (*GormMoveLineRepository)(nil)
