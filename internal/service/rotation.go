package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/rotation-advisor-service/internal/augment"
	"github.com/maxviazov/rotation-advisor-service/internal/cache"
	"github.com/maxviazov/rotation-advisor-service/internal/gameclock"
	"github.com/maxviazov/rotation-advisor-service/internal/history"
	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
	"github.com/maxviazov/rotation-advisor-service/internal/rotation"
)

// Analyzer is the engine as seen by the service.
type Analyzer interface {
	Analyze(state model.GameState, history []model.RotationRecord) model.RotationAnalysis
}

// Publisher publishes an analysis and enhances it in the background. Invalidate is
// called after every state change of the game.
type Publisher interface {
	Invalidator
	Start(ctx context.Context, gameID string, a model.RotationAnalysis, game augment.GameContext) (<-chan struct{}, error)
}

type rotationService struct {
	*mutator
	engine     Analyzer
	publisher  Publisher
	latest     cache.AnalysisCache
	historyCap int
}

// NewRotationService wires the engine to storage. historyCap is how many recent moves
// the engine sees; it should match the rotation log capacity.
func NewRotationService(games repository.GameRepository, hist repository.HistoryRepository, tx repository.TxManager, locks *GameLocks,
	engine Analyzer, publisher Publisher, latest cache.AnalysisCache, historyCap int, logger zerolog.Logger) RotationService {
	l := logger.With().Str("module", "service").Str("component", "rotation").Logger()
	if historyCap <= 0 {
		historyCap = history.DefaultCapacity
	}
	return &rotationService{
		mutator:    &mutator{games: games, history: hist, tx: tx, locks: locks, stale: publisher, log: l},
		engine:     engine,
		publisher:  publisher,
		latest:     latest,
		historyCap: historyCap,
	}
}

func (s *rotationService) Analyze(ctx context.Context, gameID string) (model.RotationAnalysis, error) {
	if err := newInvalidInput(validateGameID(gameID)); err != nil {
		return model.RotationAnalysis{}, err
	}
	// Held until published so a concurrent lineup change invalidates after us, never before.
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return model.RotationAnalysis{}, err
	}
	recent, err := s.history.Recent(ctx, gameID, s.historyCap)
	if err != nil {
		s.log.Error().Err(err).Str("game_id", gameID).Msg("load rotation history failed")
		return model.RotationAnalysis{}, err
	}

	a := s.engine.Analyze(g.State, recent)
	if _, err := s.publisher.Start(ctx, gameID, a, augment.ContextOf(g.State, a.OverallAssessment)); err != nil {
		// The caller still gets the analysis; only rotations/latest misses it.
		s.log.Warn().Err(err).Str("game_id", gameID).Msg("publish analysis failed")
	}
	s.log.Debug().Str("game_id", gameID).Int("suggestions", len(a.Suggestions)).Int("next_review", a.NextReviewTime).Msg("analysis ready")
	return a, nil
}

func (s *rotationService) Latest(ctx context.Context, gameID string) (model.RotationAnalysis, error) {
	if err := newInvalidInput(validateGameID(gameID)); err != nil {
		return model.RotationAnalysis{}, err
	}
	a, ok, err := s.latest.Get(ctx, gameID)
	if err != nil {
		s.log.Warn().Err(err).Str("game_id", gameID).Msg("analysis cache read failed")
	}
	if ok {
		return a, nil
	}
	return s.Analyze(ctx, gameID)
}

func (s *rotationService) Execute(ctx context.Context, gameID string, sg Suggestion) (model.Game, error) {
	change, ferrs := suggestionChange(sg)
	ferrs = append(validateGameID(gameID), ferrs...)
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	g, err := s.apply(ctx, gameID, change)
	if err != nil {
		err = lineupError("suggestion", err)
		if !errors.Is(err, ErrInvalidInput) && !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("game_id", gameID).Msg("execute suggestion failed")
		}
		return model.Game{}, err
	}
	return g, nil
}

func (s *rotationService) History(ctx context.Context, gameID string, limit, window int) ([]model.RotationRecord, error) {
	ferrs := validateGameID(gameID)
	if limit < 0 {
		ferrs = append(ferrs, FieldError{Field: "limit", Message: "must be >= 0"})
	}
	if window < 0 {
		ferrs = append(ferrs, FieldError{Field: "window", Message: "must be >= 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = s.historyCap
	}
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	recs, err := s.history.Recent(ctx, gameID, limit)
	if err != nil {
		s.log.Error().Err(err).Str("game_id", gameID).Msg("list history failed")
		return nil, err
	}
	if window > 0 {
		recs = history.Within(recs, g.State.TotalTime, window)
	}
	return recs, nil
}

// suggestionChange maps a suggestion onto the state store operation that carries it out.
func suggestionChange(sg Suggestion) (stateChange, []FieldError) {
	in, out := strings.TrimSpace(sg.PlayerIn), strings.TrimSpace(sg.PlayerOut)
	switch model.SuggestionType(strings.ToLower(strings.TrimSpace(sg.Type))) {
	case model.SuggestionSwap:
		return swapChange(in, out), validatePair(in, out)
	case model.SuggestionSubstituteOn:
		var ferrs []FieldError
		if in == "" {
			ferrs = append(ferrs, FieldError{Field: "player_in", Message: "must not be empty"})
		}
		pos, ok := ParsePosition(sg.Position)
		if !ok {
			ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of forward|midfield|defence"})
		}
		return toggleChange(in, pos, false), ferrs
	case model.SuggestionSubstituteOff:
		if out == "" {
			return nil, []FieldError{{Field: "player_out", Message: "must not be empty"}}
		}
		return toggleChange(out, model.PositionNone, true), nil
	default:
		return nil, []FieldError{{Field: "type", Message: "must be one of swap|substitute_on|substitute_off"}}
	}
}

// toggleChange only toggles a player that is in the expected place, so a stale
// suggestion can never flip someone the other way.
func toggleChange(id string, pos model.Position, wantActive bool) stateChange {
	return func(st model.GameState) (model.GameState, []gameclock.Move, error) {
		i := st.PlayerIndex(id)
		if i < 0 {
			return st, nil, gameclock.ErrPlayerNotFound
		}
		if st.Players[i].IsActive != wantActive {
			where := "on the bench"
			if st.Players[i].IsActive {
				where = "already on the field"
			}
			return st, nil, newInvalidInput([]FieldError{{Field: "suggestion", Message: "player is " + where}})
		}
		return gameclock.TogglePlayer(st, id, pos)
	}
}

var (
	_ RotationService = (*rotationService)(nil)
	_ Analyzer        = (*rotation.Engine)(nil)
	_ Publisher       = (*augment.Coordinator)(nil)
)
