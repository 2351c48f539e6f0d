// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error, also through wrapping.
func FieldErrors(err error) []FieldError {
	var fe interface{ Fields() []FieldError }
	if errors.As(err, &fe) && errors.Is(err, ErrInvalidInput) {
		return fe.Fields()
	}
	return nil
}

// NewPlayer is a roster entry supplied by the client. A non-empty Position puts the
// player in the starting lineup.
type NewPlayer struct {
	Name           string
	GuernseyNumber int
	Position       string
}

// Suggestion is the part of a rotation suggestion needed to carry it out.
type Suggestion struct {
	Type      string
	PlayerIn  string
	PlayerOut string
	Position  string
}

// GameService defines match setup, lineup and clock use cases.
type GameService interface {
	CreateGame(ctx context.Context, name string, roster []NewPlayer) (model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error)
	AddPlayer(ctx context.Context, gameID string, p NewPlayer) (model.Game, error)
	TogglePlayer(ctx context.Context, gameID, playerID, position string) (model.Game, error)
	MovePlayer(ctx context.Context, gameID, playerID, position string) (model.Game, error)
	Swap(ctx context.Context, gameID, inID, outID string) (model.Game, error)
	Clock(ctx context.Context, gameID, action string) (model.Game, error)
	Tick(ctx context.Context, gameID string, seconds int) (model.Game, error)
}

// RotationService defines the advisory use cases.
type RotationService interface {
	// Analyze runs the engine on the stored game and starts background enhancement.
	Analyze(ctx context.Context, gameID string) (model.RotationAnalysis, error)
	// Latest returns the newest published analysis, running one if none is cached.
	Latest(ctx context.Context, gameID string) (model.RotationAnalysis, error)
	Execute(ctx context.Context, gameID string, s Suggestion) (model.Game, error)
	// History lists recorded moves oldest first. A positive window keeps only moves
	// from the last window seconds of game time.
	History(ctx context.Context, gameID string, limit, window int) ([]model.RotationRecord, error)
}
