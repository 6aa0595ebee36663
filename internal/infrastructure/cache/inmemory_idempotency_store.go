package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/stockscan/internal/domain/shared"
)

const defaultSweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps claims in a process-local map. Claims are
// not shared between instances.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time

	done    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
}

// NewInMemoryIdempotencyStore starts a store whose sweeper drops expired
// claims every interval (five minutes when zero).
func NewInMemoryIdempotencyStore(interval time.Duration) *InMemoryIdempotencyStore {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	s := &InMemoryIdempotencyStore{
		expires: map[string]time.Time{},
		done:    make(chan struct{}),
	}
	s.stopped.Add(1)
	go s.sweep(interval)
	return s
}

// MarkProcessed claims key for ttl. It reports false while another live
// claim holds the key.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key holds a live claim
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	exp, ok := s.expires[key]
	s.mu.RUnlock()
	return ok && time.Now().Before(exp), nil
}

// Remove releases key. Unknown keys are ignored.
func (s *InMemoryIdempotencyStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. It may be called more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.stopped.Wait()
	})
	return nil
}

// Size is the number of claims held, expired or not
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

func (s *InMemoryIdempotencyStore) sweep(interval time.Duration) {
	defer s.stopped.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.dropExpired(now)
		}
	}
}

func (s *InMemoryIdempotencyStore) dropExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
