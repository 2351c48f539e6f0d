package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/rotation-advisor-service/internal/gameclock"
	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

type gameService struct {
	*mutator
	clock gameclock.Clock
}

// NewGameService builds the match use cases. stale may be nil when nothing is published.
func NewGameService(games repository.GameRepository, history repository.HistoryRepository, tx repository.TxManager, locks *GameLocks,
	clock gameclock.Clock, stale Invalidator, logger zerolog.Logger) GameService {
	l := logger.With().Str("module", "service").Str("component", "game").Logger()
	return &gameService{
		mutator: &mutator{games: games, history: history, tx: tx, locks: locks, stale: stale, log: l},
		clock:   clock,
	}
}

func (s *gameService) CreateGame(ctx context.Context, name string, roster []NewPlayer) (model.Game, error) {
	ferrs := append(validateName("name", name), validateRoster(roster)...)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("game validation failed")
		return model.Game{}, err
	}

	state := model.GameState{
		CurrentQuarter:          1,
		Players:                 []model.Player{},
		ActivePlayersByPosition: map[model.Position][]string{},
	}
	for _, p := range roster {
		var err error
		id := uuid.NewString()
		if state, err = gameclock.AddPlayer(state, id, strings.TrimSpace(p.Name), p.GuernseyNumber); err != nil {
			return model.Game{}, err
		}
		if p.Position == "" {
			continue
		}
		pos, _ := ParsePosition(p.Position)
		// The starting lineup is not a rotation, so its moves are not logged.
		if state, _, err = gameclock.TogglePlayer(state, id, pos); err != nil {
			return model.Game{}, err
		}
	}

	var out model.Game
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.games.Create(ctx, model.Game{ID: uuid.NewString(), Name: strings.TrimSpace(name), State: state})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create game failed")
		return model.Game{}, err
	}
	s.log.Info().Str("game_id", out.ID).Int("roster", len(roster)).Msg("game created")
	return out, nil
}

func (s *gameService) GetGame(ctx context.Context, id string) (model.Game, error) {
	if err := newInvalidInput(validateGameID(id)); err != nil {
		return model.Game{}, err
	}
	return s.games.GetByID(ctx, id)
}

func (s *gameService) ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error) {
	p := normalizePage(page)
	res, err := s.games.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list games failed")
		return repository.PageResult[model.Game]{}, err
	}
	return res, nil
}

func (s *gameService) AddPlayer(ctx context.Context, gameID string, p NewPlayer) (model.Game, error) {
	ferrs := append(validateGameID(gameID), validatePlayer("", p)...)
	if p.Position != "" {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "late arrivals join the bench"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	return s.run(ctx, gameID, "player", noMoves(func(st model.GameState) (model.GameState, error) {
		if numberTaken(st, p.GuernseyNumber) {
			return st, newInvalidInput([]FieldError{{Field: "guernsey_number", Message: "already taken"}})
		}
		return gameclock.AddPlayer(st, uuid.NewString(), strings.TrimSpace(p.Name), p.GuernseyNumber)
	}))
}

func (s *gameService) TogglePlayer(ctx context.Context, gameID, playerID, position string) (model.Game, error) {
	ferrs := validateGameID(gameID)
	pos, ok := ParsePosition(position)
	if position != "" && !ok {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of forward|midfield|defence"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	return s.run(ctx, gameID, "position", func(st model.GameState) (model.GameState, []gameclock.Move, error) {
		return gameclock.TogglePlayer(st, playerID, pos)
	})
}

func (s *gameService) MovePlayer(ctx context.Context, gameID, playerID, position string) (model.Game, error) {
	ferrs := validateGameID(gameID)
	pos, ok := ParsePosition(position)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of forward|midfield|defence"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	return s.run(ctx, gameID, "position", func(st model.GameState) (model.GameState, []gameclock.Move, error) {
		return gameclock.MovePlayer(st, playerID, pos)
	})
}

func (s *gameService) Swap(ctx context.Context, gameID, inID, outID string) (model.Game, error) {
	ferrs := append(validateGameID(gameID), validatePair(inID, outID)...)
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	return s.run(ctx, gameID, "players", swapChange(inID, outID))
}

func (s *gameService) Clock(ctx context.Context, gameID, action string) (model.Game, error) {
	ferrs := validateGameID(gameID)
	act := strings.ToLower(strings.TrimSpace(action))
	var change stateChange
	switch act {
	case ClockStart:
		change = noMoves(s.clock.StartClock)
	case ClockPause:
		change = noMoves(func(st model.GameState) (model.GameState, error) { return s.clock.PauseClock(st), nil })
	case ClockNextQuarter:
		change = noMoves(s.clock.NextQuarter)
	default:
		ferrs = append(ferrs, FieldError{Field: "action", Message: "must be one of start|pause|next_quarter"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	return s.run(ctx, gameID, "action", change)
}

func (s *gameService) Tick(ctx context.Context, gameID string, seconds int) (model.Game, error) {
	ferrs := validateGameID(gameID)
	if seconds <= 0 || seconds > s.clock.QuarterDuration() {
		ferrs = append(ferrs, FieldError{Field: "seconds", Message: fmt.Sprintf("must be between 1 and %d", s.clock.QuarterDuration())})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Game{}, err
	}
	return s.run(ctx, gameID, "seconds", noMoves(func(st model.GameState) (model.GameState, error) {
		return s.clock.Advance(st, seconds), nil
	}))
}

// run applies change and shapes state store rejections as field errors on field.
func (s *gameService) run(ctx context.Context, gameID, field string, change stateChange) (model.Game, error) {
	g, err := s.apply(ctx, gameID, change)
	if err == nil {
		return g, nil
	}
	err = lineupError(field, err)
	if !errors.Is(err, ErrInvalidInput) && !errors.Is(err, repository.ErrNotFound) {
		s.log.Error().Err(err).Str("game_id", gameID).Msg("game update failed")
	}
	return model.Game{}, err
}

func validatePair(inID, outID string) []FieldError {
	var ferrs []FieldError
	if strings.TrimSpace(inID) == "" {
		ferrs = append(ferrs, FieldError{Field: "player_in", Message: "must not be empty"})
	}
	if strings.TrimSpace(outID) == "" {
		ferrs = append(ferrs, FieldError{Field: "player_out", Message: "must not be empty"})
	}
	return ferrs
}

// swapChange reports which side of the swap is unknown before handing over to the state store.
func swapChange(inID, outID string) stateChange {
	return func(st model.GameState) (model.GameState, []gameclock.Move, error) {
		var ferrs []FieldError
		if st.PlayerIndex(inID) < 0 {
			ferrs = append(ferrs, FieldError{Field: "player_in", Message: "player does not exist"})
		}
		if st.PlayerIndex(outID) < 0 {
			ferrs = append(ferrs, FieldError{Field: "player_out", Message: "player does not exist"})
		}
		if err := newInvalidInput(ferrs); err != nil {
			return st, nil, err
		}
		return gameclock.ExecuteSwap(st, inID, outID)
	}
}

var _ GameService = (*gameService)(nil)
