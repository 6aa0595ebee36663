package scanning

import (
	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
)

// LotCreationPolicy decides how incoming scans obtain a lot
type LotCreationPolicy string

const (
	// LotCreationSearchCreate reuses a lot with the scanned supplier reference,
	// creating one only when none exists
	LotCreationSearchCreate LotCreationPolicy = "search-create"
	// LotCreationAlways creates a lot for every scan that does not continue
	// the line's current lot
	LotCreationAlways LotCreationPolicy = "always"
)

// IsValid reports whether the policy is known
func (p LotCreationPolicy) IsValid() bool {
	return p == LotCreationSearchCreate || p == LotCreationAlways
}

// ParseLotCreationPolicy parses a policy name
func ParseLotCreationPolicy(s string) (LotCreationPolicy, error) {
	p := LotCreationPolicy(s)
	if !p.IsValid() {
		return "", shared.ErrInvalidInput.Errorf("unknown lot creation policy %q", s)
	}
	return p, nil
}

// Configuration is the process-wide scanning setting.
// It is read once per batch and passed by value.
type Configuration struct {
	ID          uuid.UUID
	LotCreation LotCreationPolicy
}

// DefaultConfiguration returns the configuration used until one is saved
func DefaultConfiguration() Configuration {
	return Configuration{LotCreation: LotCreationSearchCreate}
}

// Validate checks the configuration
func (c Configuration) Validate() error {
	if !c.LotCreation.IsValid() {
		return shared.ErrInvalidInput.Errorf("unknown lot creation policy %q", c.LotCreation)
	}
	return nil
}
