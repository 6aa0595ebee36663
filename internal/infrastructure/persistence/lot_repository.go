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

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*scanning.Lot, error) {
	var model models.LotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the lots that exist among ids
func (r *GormLotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*scanning.Lot, error) {
	result := make(map[uuid.UUID]*scanning.Lot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.LotModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// SearchBySupplierRef returns lots with the supplier reference, oldest first.
//
// On PostgreSQL it first takes a transaction-scoped advisory lock on the
// reference, so two transactions searching the same reference are serialized
// and the second one sees the lot the first one created. Outside a
// transaction the lock is released immediately.
func (r *GormLotRepository) SearchBySupplierRef(ctx context.Context, ref string) ([]*scanning.Lot, error) {
	if ref == "" {
		return []*scanning.Lot{}, nil
	}
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", ref).Error; err != nil {
			return nil, err
		}
	}

	var rows []models.LotModel
	if err := db.Where("supplier_ref = ?", ref).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]*scanning.Lot, len(rows))
	for i := range rows {
		lots[i] = rows[i].ToDomain()
	}
	return lots, nil
}

// Create persists a new lot
func (r *GormLotRepository) Create(ctx context.Context, lot *scanning.Lot) error {
	return r.db.WithContext(ctx).Create(models.LotModelFromDomain(lot)).Error
}

var _ scanning.LotRepository = (*GormLotRepository)(nil)
