package augment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// storeTimeout bounds a single write of the latest analysis. Enhancement has its own
// budget; a slow model must not leave the write without time.
const storeTimeout = 2 * time.Second

// Store keeps the latest analysis per game.
type Store interface {
	Set(ctx context.Context, gameID string, a model.RotationAnalysis) error
	Delete(ctx context.Context, gameID string) error
}

// slot tracks one game. Its mutex serialises generation checks with store writes so an
// old result can never land after a newer analysis or an invalidation.
type slot struct {
	mu  sync.Mutex
	gen uint64
}

// Coordinator runs enhancements in the background and publishes only the newest one per game.
// Each Start or Invalidate bumps the game's generation; a result that comes back for an older
// generation is dropped.
type Coordinator struct {
	enhancer Enhancer
	store    Store
	timeout  time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	slots map[string]*slot
	wg    sync.WaitGroup
}

// NewCoordinator wires an enhancer to a store. A nil enhancer only publishes base analyses.
func NewCoordinator(enhancer Enhancer, store Store, timeout time.Duration, logger zerolog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Coordinator{
		enhancer: enhancer,
		store:    store,
		timeout:  timeout,
		log:      logger.With().Str("module", "augment").Str("component", "coordinator").Logger(),
		slots:    make(map[string]*slot),
	}
}

func (c *Coordinator) slot(gameID string) *slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[gameID]
	if !ok {
		s = &slot{}
		c.slots[gameID] = s
	}
	return s
}

// Start publishes the deterministic analysis right away and kicks off enhancement.
// The returned channel closes when the background work is finished, accepted or not.
func (c *Coordinator) Start(ctx context.Context, gameID string, a model.RotationAnalysis, game GameContext) (<-chan struct{}, error) {
	done := make(chan struct{})

	s := c.slot(gameID)
	s.mu.Lock()
	s.gen++
	gen := s.gen
	err := c.store.Set(ctx, gameID, a)
	s.mu.Unlock()
	if err != nil {
		close(done)
		return done, err
	}

	if c.enhancer == nil || len(a.Suggestions) == 0 {
		close(done)
		return done, nil
	}

	req := RequestFor(a, game)
	base := a.Clone()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)

		callCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
		outcome := c.enhancer.Enhance(callCtx, req)
		cancel()

		if u, ok := outcome.(Unavailable); ok {
			c.log.Debug().Str("game_id", gameID).Str("reason", u.Reason).Msg("enhancement unavailable")
			return
		}
		enhanced := Apply(base, outcome)
		if !enhanced.Enhanced {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			c.log.Debug().Str("game_id", gameID).Uint64("generation", gen).Msg("discarding stale enhancement")
			return
		}
		storeCtx, cancelStore := context.WithTimeout(context.Background(), storeTimeout)
		defer cancelStore()
		if err := c.store.Set(storeCtx, gameID, enhanced); err != nil {
			c.log.Error().Err(err).Str("game_id", gameID).Msg("store enhanced analysis")
		}
	}()
	return done, nil
}

// Invalidate marks the game's published analysis as describing an old lineup: the cached
// entry is dropped and any enhancement still in flight is discarded when it returns.
func (c *Coordinator) Invalidate(ctx context.Context, gameID string) error {
	s := c.slot(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return c.store.Delete(ctx, gameID)
}

// Wait blocks until every in-flight enhancement has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
