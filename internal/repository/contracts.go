package repository

import (
	"context"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// GameRepository persists games together with their live state.
// The state is stored as one document; I never query inside it.
type GameRepository interface {
	Create(ctx context.Context, g model.Game) (model.Game, error)
	GetByID(ctx context.Context, id string) (model.Game, error)
	// Update replaces name and state. ErrNotFound if the game does not exist.
	Update(ctx context.Context, g model.Game) (model.Game, error)
	// List returns games newest first.
	List(ctx context.Context, p Page) (PageResult[model.Game], error)
}

// HistoryRepository keeps the rotation log per game.
type HistoryRepository interface {
	Append(ctx context.Context, rec model.RotationRecord) (model.RotationRecord, error)
	// Recent returns up to limit of the game's latest records, oldest first.
	Recent(ctx context.Context, gameID string, limit int) ([]model.RotationRecord, error)
}
