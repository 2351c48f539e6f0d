package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
	"github.com/maxviazov/rotation-advisor-service/internal/repository/contract"
)

func TestGameRepository_MemoryContract(t *testing.T) {
	contract.RunGameRepositoryContract(t, func(t *testing.T) (repository.GameRepository, func()) {
		return New(20).Games(), func() {}
	})
}

func TestHistoryRepository_MemoryContract(t *testing.T) {
	contract.RunHistoryRepositoryContract(t, func(t *testing.T) (repository.HistoryRepository, repository.GameRepository, func()) {
		s := New(20)
		return s.History(), s.Games(), func() {}
	})
}

func TestTxManager_MemoryContract(t *testing.T) {
	contract.RunTxManagerContract(t, func(t *testing.T) (repository.TxManager, repository.GameRepository, func()) {
		s := New(20)
		return s.TxManager(), s.Games(), func() {}
	})
}

func TestPinger_MemoryContract(t *testing.T) {
	contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
		return New(20), func() {}
	})
}

func TestStore_HistoryIsBounded(t *testing.T) {
	s := New(3)
	ctx := context.Background()
	g, err := s.Games().Create(ctx, model.Game{Name: "bounded"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := s.History().Append(ctx, model.RotationRecord{GameID: g.ID, PlayerID: "p", GameTime: i})
		require.NoError(t, err)
	}

	recent, err := s.History().Recent(ctx, g.ID, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, 2, recent[0].GameTime)
}

func TestStore_RollbackRestoresHistory(t *testing.T) {
	s := New(20)
	ctx := context.Background()
	g, err := s.Games().Create(ctx, model.Game{Name: "tx"})
	require.NoError(t, err)

	err = s.TxManager().WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.History().Append(ctx, model.RotationRecord{GameID: g.ID, PlayerID: "p"}); err != nil {
			return err
		}
		g.State.TotalTime = 99
		if _, err := s.Games().Update(ctx, g); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	recent, err := s.History().Recent(ctx, g.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
	got, err := s.Games().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, got.State.TotalTime)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New(20)
	ctx := context.Background()
	g, err := s.Games().Create(ctx, model.Game{Name: "copy", State: model.GameState{Players: []model.Player{{ID: "a"}}}})
	require.NoError(t, err)

	g.State.Players[0].Name = "mutated"
	got, err := s.Games().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, got.State.Players[0].Name)
}
