// Package memory keeps scanning records in process memory.
// It backs the "memory" database driver and the package tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/google/uuid"
)

// Store is an arena of records addressed by ID
type Store struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	moves        map[uuid.UUID]*scanning.MoveLine
	moveSeq      int64
	lots         map[uuid.UUID]*scanning.Lot
	lotOrder     []uuid.UUID
	shipments    map[uuid.UUID]*scanning.Shipment
	locations    map[uuid.UUID]*scanning.Location
	requirements map[uuid.UUID]scanning.ProductLotRequirement
	config       *scanning.Configuration
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		moves:        make(map[uuid.UUID]*scanning.MoveLine),
		lots:         make(map[uuid.UUID]*scanning.Lot),
		shipments:    make(map[uuid.UUID]*scanning.Shipment),
		locations:    make(map[uuid.UUID]*scanning.Location),
		requirements: make(map[uuid.UUID]scanning.ProductLotRequirement),
	}
}

// snapshot is a copy of the store's tables
type snapshot struct {
	moves        map[uuid.UUID]*scanning.MoveLine
	moveSeq      int64
	lots         map[uuid.UUID]*scanning.Lot
	lotOrder     []uuid.UUID
	shipments    map[uuid.UUID]*scanning.Shipment
	locations    map[uuid.UUID]*scanning.Location
	requirements map[uuid.UUID]scanning.ProductLotRequirement
	config       *scanning.Configuration
}

// Records are replaced on write, never mutated, so a shallow map copy is enough.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		moves:        maps.Clone(s.moves),
		moveSeq:      s.moveSeq,
		lots:         maps.Clone(s.lots),
		lotOrder:     append([]uuid.UUID(nil), s.lotOrder...),
		shipments:    maps.Clone(s.shipments),
		locations:    maps.Clone(s.locations),
		requirements: maps.Clone(s.requirements),
	}
	if s.config != nil {
		cfg := *s.config
		snap.config = &cfg
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = snap.moves
	s.moveSeq = snap.moveSeq
	s.lots = snap.lots
	s.lotOrder = snap.lotOrder
	s.shipments = snap.shipments
	s.locations = snap.locations
	s.requirements = snap.requirements
	s.config = snap.config
}

// Atomically runs fn one at a time. When fn fails every write it made is undone.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// MoveLines returns the move line repository of the store
func (s *Store) MoveLines() *MoveLineRepository {
	return &MoveLineRepository{store: s}
}

// Lots returns the lot repository of the store
func (s *Store) Lots() *LotRepository {
	return &LotRepository{store: s}
}

// Shipments returns the shipment repository of the store
func (s *Store) Shipments() *ShipmentRepository {
	return &ShipmentRepository{store: s}
}

// Configuration returns the configuration repository of the store
func (s *Store) Configuration() *ConfigurationRepository {
	return &ConfigurationRepository{store: s}
}

// Requirements returns the lot requirement table of the store
func (s *Store) Requirements() *RequirementTable {
	return &RequirementTable{store: s}
}
