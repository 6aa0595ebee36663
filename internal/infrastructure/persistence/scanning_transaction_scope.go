package persistence

import (
	"context"

	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/domain/scanning"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to the callback shares the transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction, committing when it returns nil and
// rolling back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appscan.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) MoveLineRepo() scanning.MoveLineRepository {
	return NewGormMoveLineRepository(r.tx)
}

func (r *gormTransactionalRepositories) LotRepo() scanning.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) ShipmentRepo() scanning.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) ConfigurationRepo() scanning.ConfigurationRepository {
	return NewGormConfigurationRepository(r.tx)
}

func (r *gormTransactionalRepositories) LotRequirement() scanning.LotRequirement {
	return NewGormLotRequirementRepository(r.tx)
}

var _ appscan.TransactionScope = (*GormTransactionScope)(nil)
var _ appscan.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
