// Package contract holds behaviour suites every storage backend must pass.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

type GameFactory func(t *testing.T) (repository.GameRepository, func())

type HistoryFactory func(t *testing.T) (repo repository.HistoryRepository, games repository.GameRepository, cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, games repository.GameRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func sampleGame(name string) model.Game {
	return model.Game{
		ID:   uuid.NewString(),
		Name: name,
		State: model.GameState{
			CurrentQuarter: 1,
			Players: []model.Player{
				{ID: "p1", Name: "Ava", GuernseyNumber: 7, IsActive: true, CurrentPosition: model.PositionForward,
					TimeStats: map[model.Position]int{model.PositionForward: 30}},
				{ID: "p2", Name: "Ben", GuernseyNumber: 11},
			},
			ActivePlayersByPosition: map[model.Position][]string{model.PositionForward: {"p1"}},
		},
	}
}

func RunGameRepositoryContract(t *testing.T, makeRepo GameFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, sampleGame("Round 1"))
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Fatalf("timestamps not set: %+v", created)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != "Round 1" {
			t.Fatalf("mismatch: %+v", got)
		}
		if len(got.State.Players) != 2 || got.State.Players[0].TimeStats[model.PositionForward] != 30 {
			t.Fatalf("state not round-tripped: %+v", got.State)
		}
		if ids := got.State.ActivePlayersByPosition[model.PositionForward]; len(ids) != 1 || ids[0] != "p1" {
			t.Fatalf("lineup not round-tripped: %+v", got.State.ActivePlayersByPosition)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), uuid.NewString())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("create_duplicate_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := sampleGame("Dup")
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := repo.Create(ctx, g); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("update_replaces_state", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, sampleGame("Before"))
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		created.Name = "After"
		created.State.TotalTime = 120
		created.State.IsPlaying = true
		if _, err := repo.Update(ctx, created); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "After" || got.State.TotalTime != 120 || !got.State.IsPlaying {
			t.Fatalf("update not persisted: %+v", got)
		}
		if got.UpdatedAt.Before(created.UpdatedAt) {
			t.Fatalf("updated_at went backwards")
		}
	})

	t.Run("update_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		if _, err := repo.Update(context.Background(), sampleGame("ghost")); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			if _, err := repo.Create(ctx, sampleGame(fmt.Sprintf("G-%d", i))); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		res2, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 {
			t.Fatalf("unexpected last page: len=%d", len(res2.Items))
		}
	})
}

func RunHistoryRepositoryContract(t *testing.T, makeRepo HistoryFactory) {
	t.Helper()

	t.Run("append_and_recent", func(t *testing.T) {
		repo, games, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g, err := games.Create(ctx, sampleGame("History"))
		if err != nil {
			t.Fatalf("seed game: %v", err)
		}
		for i := 1; i <= 5; i++ {
			rec := model.RotationRecord{GameID: g.ID, PlayerID: fmt.Sprintf("p%d", i), Action: model.ActionOut, Position: model.PositionMidfield, GameTime: i * 10}
			out, err := repo.Append(ctx, rec)
			if err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
			if out.ID == "" || out.CreatedAt.IsZero() {
				t.Fatalf("append did not fill id/created_at: %+v", out)
			}
		}
		recent, err := repo.Recent(ctx, g.ID, 3)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(recent) != 3 {
			t.Fatalf("expected 3 records, got %d", len(recent))
		}
		if recent[0].PlayerID != "p3" || recent[2].PlayerID != "p5" {
			t.Fatalf("expected oldest-first p3..p5, got %s..%s", recent[0].PlayerID, recent[2].PlayerID)
		}
		if recent[1].Action != model.ActionOut || recent[1].Position != model.PositionMidfield || recent[1].GameTime != 40 {
			t.Fatalf("record fields not round-tripped: %+v", recent[1])
		}
	})

	t.Run("recent_empty_ok", func(t *testing.T) {
		repo, games, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g, err := games.Create(ctx, sampleGame("Quiet"))
		if err != nil {
			t.Fatalf("seed game: %v", err)
		}
		recent, err := repo.Recent(ctx, g.ID, 20)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(recent) != 0 {
			t.Fatalf("expected empty history, got %d", len(recent))
		}
	})

	t.Run("append_unknown_game_conflict", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Append(context.Background(), model.RotationRecord{GameID: uuid.NewString(), PlayerID: "x", Action: model.ActionIn, Position: model.PositionDefence})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict for unknown game, got %v", err)
		}
	})

	t.Run("append_bad_action_invalid", func(t *testing.T) {
		repo, games, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g, err := games.Create(ctx, sampleGame("Bad action"))
		if err != nil {
			t.Fatalf("seed game: %v", err)
		}
		_, err = repo.Append(ctx, model.RotationRecord{GameID: g.ID, PlayerID: "x", Action: "sideways", Position: model.PositionDefence})
		if !errors.Is(err, repository.ErrInvalidRecord) {
			t.Fatalf("expected ErrInvalidRecord, got %v", err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, games, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID string
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := games.Create(ctx, sampleGame("TxCommit"))
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := games.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, games, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID string
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := games.Create(ctx, sampleGame("TxRollback"))
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := games.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
