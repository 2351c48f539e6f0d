package rotation

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

type times = map[model.Position]int

func onField(id string, pos model.Position, last int, t times) model.Player {
	return model.Player{ID: id, Name: "P-" + id, IsActive: true, CurrentPosition: pos, LastInterchangeTime: last, TimeStats: t}
}

func benched(id string, last int, t times) model.Player {
	return model.Player{ID: id, Name: "P-" + id, LastInterchangeTime: last, TimeStats: t}
}

// game builds a playing snapshot whose lineup follows the players' own flags, in roster order.
func game(now, quarterTime int, players ...model.Player) model.GameState {
	st := model.GameState{
		IsPlaying:               true,
		CurrentQuarter:          1,
		QuarterTime:             quarterTime,
		TotalTime:               now,
		Players:                 players,
		ActivePlayersByPosition: map[model.Position][]string{},
	}
	for _, p := range players {
		if p.IsActive {
			st.ActivePlayersByPosition[p.CurrentPosition] = append(st.ActivePlayersByPosition[p.CurrentPosition], p.ID)
		}
	}
	return st
}

func newTestEngine(t *testing.T, th Thresholds) *Engine {
	t.Helper()
	e, err := NewEngine(th, zerolog.New(io.Discard))
	require.NoError(t, err)
	return e
}

func withFactor(in []model.RotationSuggestion, f model.Factor) []model.RotationSuggestion {
	var out []model.RotationSuggestion
	for _, s := range in {
		if s.HasFactor(f) {
			out = append(out, s)
		}
	}
	return out
}
