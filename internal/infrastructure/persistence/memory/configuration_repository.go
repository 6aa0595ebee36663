package memory

import (
	"context"

	"github.com/erp/stockscan/internal/domain/scanning"
)

// ConfigurationRepository keeps the single configuration record
type ConfigurationRepository struct {
	store *Store
}

// Get returns the saved configuration or the default
func (r *ConfigurationRepository) Get(_ context.Context) (scanning.Configuration, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.config == nil {
		return scanning.DefaultConfiguration(), nil
	}
	return *r.store.config, nil
}

// Save replaces the configuration
func (r *ConfigurationRepository) Save(_ context.Context, cfg scanning.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.config = &cfg
	return nil
}

var _ scanning.ConfigurationRepository = (*ConfigurationRepository)(nil)
