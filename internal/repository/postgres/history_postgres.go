package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

type historyRepository struct{ pool *pgxpool.Pool }

func NewHistoryRepository(pool *pgxpool.Pool) repository.HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Append(ctx context.Context, rec model.RotationRecord) (model.RotationRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.RotationRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO rotation_history (id, game_id, player_id, action, position, game_time)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		rec.ID, rec.GameID, rec.PlayerID, string(rec.Action), string(rec.Position), rec.GameTime,
	)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return model.RotationRecord{}, repository.MapPgError(err)
	}
	return rec, nil
}

func (r *historyRepository) Recent(ctx context.Context, gameID string, limit int) ([]model.RotationRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	limit = repository.Page{Limit: limit}.Sanitize().Limit
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT id, game_id, player_id, action, position, game_time, created_at
		 FROM (
		     SELECT seq, id, game_id, player_id, action, position, game_time, created_at
		     FROM rotation_history
		     WHERE game_id = $1
		     ORDER BY seq DESC
		     LIMIT $2
		 ) latest
		 ORDER BY seq ASC`,
		gameID, limit,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.RotationRecord, 0, limit)
	for rows.Next() {
		var (
			rec            model.RotationRecord
			action, posStr string
		)
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.PlayerID, &action, &posStr, &rec.GameTime, &rec.CreatedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		rec.Action = model.RotationAction(action)
		rec.Position = model.Position(posStr)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.HistoryRepository = (*historyRepository)(nil)
