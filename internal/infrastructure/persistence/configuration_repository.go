package persistence

import (
	"context"
	"errors"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormConfigurationRepository keeps the single scanner configuration row
type GormConfigurationRepository struct {
	db *gorm.DB
}

// NewGormConfigurationRepository creates a new GormConfigurationRepository
func NewGormConfigurationRepository(db *gorm.DB) *GormConfigurationRepository {
	return &GormConfigurationRepository{db: db}
}

// Get returns the stored configuration, or the default when none was saved
func (r *GormConfigurationRepository) Get(ctx context.Context) (scanning.Configuration, error) {
	var model models.ScannerConfigurationModel
	if err := r.db.WithContext(ctx).Order("id").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scanning.DefaultConfiguration(), nil
		}
		return scanning.Configuration{}, err
	}
	return model.ToDomain(), nil
}

// Save replaces the configuration row
func (r *GormConfigurationRepository) Save(ctx context.Context, cfg scanning.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	id := cfg.ID
	if id == uuid.Nil {
		current, err := r.Get(ctx)
		if err != nil {
			return err
		}
		id = current.ID
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return r.db.WithContext(ctx).Save(&models.ScannerConfigurationModel{
		ID:          id,
		LotCreation: string(cfg.LotCreation),
	}).Error
}

var _ scanning.ConfigurationRepository = (*GormConfigurationRepository)(nil)
