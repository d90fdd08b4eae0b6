// Package cache holds the idempotency stores the event fabric uses to
// deduplicate deliveries. Redis backs multi-instance deployments; the
// in-memory store covers single-process setups and tests.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
)

const defaultJanitorInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps processed event IDs in a map guarded by a
// RWMutex. State is per-process: two replicas sharing a subscription will
// each deliver an event once, so distributed deployments must use Redis.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expiry  map[string]time.Time
	done    chan struct{}
	janitor sync.WaitGroup
	once    sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts a janitor
// goroutine that evicts expired IDs every few minutes. Call Close to stop it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryStore(defaultJanitorInterval)
}

func newInMemoryStore(janitorInterval time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiry: make(map[string]time.Time),
		done:   make(chan struct{}),
	}
	s.janitor.Add(1)
	go s.runJanitor(janitorInterval)
	return s
}

// MarkProcessed records eventID for ttl. The first caller for a live ID gets
// true; everyone else gets false until the entry expires.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if until, ok := s.expiry[eventID]; ok && now.Before(until) {
		return false, nil
	}
	s.expiry[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether eventID was marked and has not yet expired.
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	until, ok := s.expiry[eventID]
	s.mu.RUnlock()

	return ok && time.Now().Before(until), nil
}

// Close stops the janitor. Idempotent.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.janitor.Wait()
	})
	return nil
}

// Size reports the number of tracked IDs, expired entries included until the
// janitor sweeps them.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiry)
}

func (s *InMemoryIdempotencyStore) runJanitor(interval time.Duration) {
	defer s.janitor.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, until := range s.expiry {
		if now.After(until) {
			delete(s.expiry, id)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
