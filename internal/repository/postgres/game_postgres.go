package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

type gameRepository struct{ pool *pgxpool.Pool }

func NewGameRepository(pool *pgxpool.Pool) repository.GameRepository {
	return &gameRepository{pool: pool}
}

const gameColumns = `id, name, state, created_at, updated_at`

func (r *gameRepository) Create(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	state, err := json.Marshal(g.State)
	if err != nil {
		return model.Game{}, fmt.Errorf("encode game state: %w", err)
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO games (id, name, state)
		 VALUES ($1, $2, $3)
		 RETURNING `+gameColumns,
		g.ID, g.Name, state,
	)
	return scanGame(row)
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id,
	)
	return scanGame(row)
}

func (r *gameRepository) Update(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	state, err := json.Marshal(g.State)
	if err != nil {
		return model.Game{}, fmt.Errorf("encode game state: %w", err)
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE games SET name = $2, state = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+gameColumns,
		g.ID, g.Name, state,
	)
	return scanGame(row)
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Game]{}, err
	}
	p = p.Sanitize()
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+gameColumns+`, COUNT(*) OVER() AS total
		 FROM games
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.Game]{Items: make([]model.Game, 0, p.Limit)}
	for rows.Next() {
		var (
			it    model.Game
			raw   []byte
			total int
		)
		if err := rows.Scan(&it.ID, &it.Name, &raw, &it.CreatedAt, &it.UpdatedAt, &total); err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		if err := json.Unmarshal(raw, &it.State); err != nil {
			return repository.PageResult[model.Game]{}, fmt.Errorf("decode game %s state: %w", it.ID, err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	// an offset past the end returns no rows, so no window total either
	if len(res.Items) == 0 && p.Offset > 0 {
		if err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM games`).Scan(&res.Total); err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

func scanGame(row pgx.Row) (model.Game, error) {
	var (
		out model.Game
		raw []byte
	)
	if err := row.Scan(&out.ID, &out.Name, &raw, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Game{}, repository.ErrNotFound
		}
		return model.Game{}, repository.MapPgError(err)
	}
	if err := json.Unmarshal(raw, &out.State); err != nil {
		return model.Game{}, fmt.Errorf("decode game %s state: %w", out.ID, err)
	}
	return out, nil
}

var _ repository.GameRepository = (*gameRepository)(nil)
