package persistence

import (
	"context"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLotRequirementRepository answers lot requirements from the locations
// and product_lot_requirements tables
type GormLotRequirementRepository struct {
	db *gorm.DB
}

// NewGormLotRequirementRepository creates a new GormLotRequirementRepository
func NewGormLotRequirementRepository(db *gorm.DB) *GormLotRequirementRepository {
	return &GormLotRequirementRepository{db: db}
}

// LotIsRequired reports whether the product needs a lot when moving between
// the two locations. Unknown locations and products never require one.
func (r *GormLotRequirementRepository) LotIsRequired(ctx context.Context, productID, fromLocationID, toLocationID uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)

	var required []string
	if err := db.Model(&models.ProductLotRequirementModel{}).
		Where("product_id = ?", productID).
		Pluck("location_type", &required).Error; err != nil {
		return false, err
	}
	if len(required) == 0 {
		return false, nil
	}

	var locations []models.LocationModel
	if err := db.Where("id IN ?", []uuid.UUID{fromLocationID, toLocationID}).Find(&locations).Error; err != nil {
		return false, err
	}
	types := make(map[uuid.UUID]scanning.LocationType, len(locations))
	for _, loc := range locations {
		types[loc.ID] = scanning.LocationType(loc.Type)
	}

	req := scanning.ProductLotRequirement{ProductID: productID}
	for _, t := range required {
		req.LocationTypes = append(req.LocationTypes, scanning.LocationType(t))
	}
	return req.Requires(types[fromLocationID], types[toLocationID]), nil
}

// SaveLocation creates or updates a location
func (r *GormLotRequirementRepository) SaveLocation(ctx context.Context, location *scanning.Location) error {
	return r.db.WithContext(ctx).Save(models.LocationModelFromDomain(location)).Error
}

// SetRequirement replaces the lot requirement of a product
func (r *GormLotRequirementRepository) SetRequirement(ctx context.Context, req scanning.ProductLotRequirement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", req.ProductID).Delete(&models.ProductLotRequirementModel{}).Error; err != nil {
			return err
		}
		rows := models.ProductLotRequirementModelsFromDomain(req)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

var _ scanning.LotRequirement = (*GormLotRequirementRepository)(nil)
