// Package cache stores the latest rotation analysis per game, enhanced or not,
// so clients polling between reviews do not rerun the engine.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// AnalysisCache is safe for concurrent use. A miss is (zero, false, nil).
type AnalysisCache interface {
	Get(ctx context.Context, gameID string) (model.RotationAnalysis, bool, error)
	Set(ctx context.Context, gameID string, a model.RotationAnalysis) error
	// Delete drops the game's entry once its lineup changes. Deleting a missing entry is not an error.
	Delete(ctx context.Context, gameID string) error
}

type entry struct {
	analysis model.RotationAnalysis
	expires  time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewMemory keeps analyses in process. Entries expire after ttl; zero keeps them forever.
func NewMemory(ttl time.Duration) AnalysisCache {
	return &memoryCache{ttl: ttl, entries: make(map[string]entry), now: time.Now}
}

func (c *memoryCache) Get(_ context.Context, gameID string) (model.RotationAnalysis, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[gameID]
	c.mu.RUnlock()
	if !ok {
		return model.RotationAnalysis{}, false, nil
	}
	if c.expired(e) {
		// A Set may have landed since the read lock was released.
		c.mu.Lock()
		e, ok = c.entries[gameID]
		if ok && c.expired(e) {
			delete(c.entries, gameID)
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			return model.RotationAnalysis{}, false, nil
		}
	}
	return e.analysis.Clone(), true, nil
}

func (c *memoryCache) Set(_ context.Context, gameID string, a model.RotationAnalysis) error {
	e := entry{analysis: a.Clone()}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[gameID] = e
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, gameID string) error {
	c.mu.Lock()
	delete(c.entries, gameID)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) expired(e entry) bool {
	return !e.expires.IsZero() && c.now().After(e.expires)
}
