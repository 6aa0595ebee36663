package memory

import (
	"context"

	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/domain/scanning"
)

// TransactionScope implements the application TransactionScope on a Store.
// Executions are serialized and a failed one leaves the store untouched.
type TransactionScope struct {
	store *Store
}

// NewTransactionScope creates a TransactionScope over the store
func NewTransactionScope(store *Store) *TransactionScope {
	return &TransactionScope{store: store}
}

// Execute runs fn against the store's repositories
func (s *TransactionScope) Execute(ctx context.Context, fn func(repos appscan.TransactionalRepositories) error) error {
	return s.store.Atomically(ctx, func(context.Context) error {
		return fn(s)
	})
}

// MoveLineRepo returns the move line repository
func (s *TransactionScope) MoveLineRepo() scanning.MoveLineRepository { return s.store.MoveLines() }

// LotRepo returns the lot repository
func (s *TransactionScope) LotRepo() scanning.LotRepository { return s.store.Lots() }

// ShipmentRepo returns the shipment repository
func (s *TransactionScope) ShipmentRepo() scanning.ShipmentRepository { return s.store.Shipments() }

// ConfigurationRepo returns the configuration repository
func (s *TransactionScope) ConfigurationRepo() scanning.ConfigurationRepository {
	return s.store.Configuration()
}

// LotRequirement returns the lot requirement table
func (s *TransactionScope) LotRequirement() scanning.LotRequirement { return s.store.Requirements() }

var _ appscan.TransactionScope = (*TransactionScope)(nil)
var _ appscan.TransactionalRepositories = (*TransactionScope)(nil)
