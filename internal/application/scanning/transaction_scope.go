package scanning

import (
	"context"

	"github.com/erp/stockscan/internal/domain/scanning"
)

// TransactionScope provides transactional access to scanning repositories.
// A scan's matching, allocation and shipment update run inside one Execute call
// and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all scanning repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	MoveLineRepo() scanning.MoveLineRepository
	LotRepo() scanning.LotRepository
	ShipmentRepo() scanning.ShipmentRepository
	ConfigurationRepo() scanning.ConfigurationRepository
	LotRequirement() scanning.LotRequirement
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	moveRepo     scanning.MoveLineRepository
	lotRepo      scanning.LotRepository
	shipmentRepo scanning.ShipmentRepository
	configRepo   scanning.ConfigurationRepository
	requirement  scanning.LotRequirement
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	moveRepo scanning.MoveLineRepository,
	lotRepo scanning.LotRepository,
	shipmentRepo scanning.ShipmentRepository,
	configRepo scanning.ConfigurationRepository,
	requirement scanning.LotRequirement,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		moveRepo:     moveRepo,
		lotRepo:      lotRepo,
		shipmentRepo: shipmentRepo,
		configRepo:   configRepo,
		requirement:  requirement,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MoveLineRepo returns the move line repository.
func (s *NoOpTransactionScope) MoveLineRepo() scanning.MoveLineRepository {
	return s.moveRepo
}

// LotRepo returns the lot repository.
func (s *NoOpTransactionScope) LotRepo() scanning.LotRepository {
	return s.lotRepo
}

// ShipmentRepo returns the shipment repository.
func (s *NoOpTransactionScope) ShipmentRepo() scanning.ShipmentRepository {
	return s.shipmentRepo
}

// ConfigurationRepo returns the configuration repository.
func (s *NoOpTransactionScope) ConfigurationRepo() scanning.ConfigurationRepository {
	return s.configRepo
}

// LotRequirement returns the lot requirement predicate.
func (s *NoOpTransactionScope) LotRequirement() scanning.LotRequirement {
	return s.requirement
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
