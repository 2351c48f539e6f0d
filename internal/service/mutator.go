package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/maxviazov/rotation-advisor-service/internal/gameclock"
	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

// GameLocks hands out one mutex per game so read-modify-write cycles on the same
// game never interleave. Share a single instance between services.
type GameLocks struct {
	m sync.Map
}

func NewGameLocks() *GameLocks { return &GameLocks{} }

func (l *GameLocks) lock(gameID string) func() {
	v, _ := l.m.LoadOrStore(gameID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Invalidator forgets whatever analysis was published for a game once its state changes.
type Invalidator interface {
	Invalidate(ctx context.Context, gameID string) error
}

// stateChange computes the next state. Moves it returns are appended to the rotation log.
type stateChange func(state model.GameState) (model.GameState, []gameclock.Move, error)

// mutator applies a state change and its history entries in one transaction.
type mutator struct {
	games   repository.GameRepository
	history repository.HistoryRepository
	tx      repository.TxManager
	locks   *GameLocks
	stale   Invalidator
	log     zerolog.Logger
}

func (m *mutator) apply(ctx context.Context, gameID string, change stateChange) (model.Game, error) {
	unlock := m.locks.lock(gameID)
	defer unlock()

	var out model.Game
	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		g, err := m.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		next, moves, err := change(g.State)
		if err != nil {
			return err
		}
		g.State = next
		updated, err := m.games.Update(ctx, g)
		if err != nil {
			return err
		}
		for _, mv := range moves {
			rec := model.RotationRecord{
				GameID:   gameID,
				PlayerID: mv.PlayerID,
				Action:   mv.Action,
				Position: mv.Position,
				GameTime: next.TotalTime,
			}
			if _, err := m.history.Append(ctx, rec); err != nil {
				return err
			}
		}
		if len(moves) > 0 {
			m.log.Info().Str("game_id", gameID).Int("moves", len(moves)).Int("game_time", next.TotalTime).Msg("lineup changed")
		}
		out = updated
		return nil
	})
	if err != nil {
		return model.Game{}, err
	}
	// Still under the game lock, so no analysis of the old state can be published after this.
	if m.stale != nil {
		if err := m.stale.Invalidate(context.WithoutCancel(ctx), gameID); err != nil {
			m.log.Warn().Err(err).Str("game_id", gameID).Msg("invalidate latest analysis failed")
		}
	}
	return out, nil
}

// noMoves adapts a change that never touches the lineup.
func noMoves(fn func(model.GameState) (model.GameState, error)) stateChange {
	return func(s model.GameState) (model.GameState, []gameclock.Move, error) {
		next, err := fn(s)
		return next, nil, err
	}
}
