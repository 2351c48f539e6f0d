package rotation

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// 12 on field for 400s, 5 rested bench players, one newcomer who has not played.
func lateArrivalGame() model.GameState {
	var players []model.Player
	for _, pos := range model.Positions {
		for i := 1; i <= 4; i++ {
			players = append(players, onField(fmt.Sprintf("%s%d", pos[:1], i), pos, 200, times{pos: 600}))
		}
	}
	for i := 1; i <= 5; i++ {
		players = append(players, benched(fmt.Sprintf("b%d", i), 200, times{model.PositionForward: 200}))
	}
	players = append(players, benched("late", 550, nil))
	return game(600, 300, players...)
}

func TestAnalyze_LateArrivalIsUrgentAndFirst(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := lateArrivalGame()
	require.Len(t, st.Players, 18)

	a := e.Analyze(st, nil)

	late := withFactor(a.Suggestions, model.FactorLateArrival)
	require.Len(t, late, 1)
	assert.Equal(t, model.PriorityUrgent, late[0].Priority)
	assert.Equal(t, "late", late[0].PlayerIn)
	assert.Equal(t, model.SuggestionSwap, late[0].Type)
	assert.Equal(t, "late", a.Suggestions[0].PlayerIn)
	assert.Contains(t, a.Suggestions[0].Reasoning, "P-late")
	assert.LessOrEqual(t, len(a.Suggestions), DefaultThresholds().TopN)
}

func TestAnalyze_LateArrivalNeedsLongStint(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := game(300, 300,
		onField("f1", model.PositionForward, 100, times{model.PositionForward: 300}),
		onField("m1", model.PositionMidfield, 100, times{model.PositionMidfield: 300}),
		onField("d1", model.PositionDefence, 100, times{model.PositionDefence: 300}),
		benched("late", 280, nil),
	)

	a := e.Analyze(st, nil)

	assert.Empty(t, withFactor(a.Suggestions, model.FactorLateArrival))
}

func TestAnalyze_LateArrivalFillsEmptyPosition(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := game(120, 120,
		onField("f1", model.PositionForward, 0, times{model.PositionForward: 120}),
		onField("m1", model.PositionMidfield, 0, times{model.PositionMidfield: 120}),
		benched("late", 100, nil),
	)

	a := e.Analyze(st, nil)

	require.Len(t, a.Suggestions, 1)
	s := a.Suggestions[0]
	assert.Equal(t, model.SuggestionSubstituteOn, s.Type)
	assert.Equal(t, model.PositionDefence, s.Position)
	assert.Equal(t, "late", s.PlayerIn)
	assert.Empty(t, s.PlayerOut)
}

func TestAnalyze_EquityGapAboveFiveMinutesIsUrgent(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := game(900, 100,
		onField("a", model.PositionForward, 600, times{model.PositionForward: 700}),
		onField("b", model.PositionForward, 600, times{model.PositionForward: 340}),
		benched("c1", 600, times{model.PositionMidfield: 340}),
		benched("c2", 600, times{model.PositionMidfield: 340}),
	)
	st.CurrentQuarter = 2

	a := e.Analyze(st, nil)

	equity := withFactor(a.Suggestions, model.FactorTimeEquity)
	require.Len(t, equity, 1)
	assert.Equal(t, model.PriorityUrgent, equity[0].Priority)
	assert.Equal(t, "a", equity[0].PlayerOut)
	assert.Equal(t, "c1", equity[0].PlayerIn)
	assert.Equal(t, model.PositionForward, equity[0].Position)
	assert.Equal(t, "1 urgent rotation needed - make this change soon.", a.OverallAssessment)
}

func TestAnalyze_NothingToSuggest(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())

	t.Run("empty roster", func(t *testing.T) {
		a := e.Analyze(model.GameState{}, nil)
		assert.Empty(t, a.Suggestions)
		assert.NotNil(t, a.Suggestions)
		assert.Equal(t, AssessmentNoNeeds, a.OverallAssessment)
		assert.Equal(t, 180, a.NextReviewTime)
	})

	t.Run("balanced early quarter", func(t *testing.T) {
		st := game(100, 100,
			onField("f1", model.PositionForward, 0, times{model.PositionForward: 100}),
			onField("f2", model.PositionForward, 0, times{model.PositionForward: 100}),
			benched("b1", 50, times{model.PositionForward: 50}),
		)
		a := e.Analyze(st, nil)
		assert.Empty(t, a.Suggestions)
		assert.Equal(t, AssessmentNoNeeds, a.OverallAssessment)
		assert.Equal(t, 90, a.NextReviewTime)
	})
}

func experienceGame(quarterTime, now int) model.GameState {
	st := game(now, quarterTime,
		onField("a", model.PositionForward, now-400, times{model.PositionMidfield: now - 600, model.PositionForward: 200}),
		onField("b", model.PositionMidfield, now-400, times{model.PositionMidfield: now - 400}),
	)
	st.CurrentQuarter = 2
	return st
}

func TestAnalyze_PositionExperienceOnlyBeforeLatePhase(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())

	mid := e.Analyze(experienceGame(400, 1300), nil)
	require.Len(t, mid.Suggestions, 1)
	s := mid.Suggestions[0]
	assert.True(t, s.HasFactor(model.FactorPositionExperience))
	assert.Equal(t, model.PriorityOptional, s.Priority)
	assert.Equal(t, "b", s.PlayerIn)
	assert.Equal(t, "a", s.PlayerOut)
	assert.Equal(t, model.PositionForward, s.Position)
	assert.Equal(t, AssessmentOptional, mid.OverallAssessment)

	late := e.Analyze(experienceGame(800, 1700), nil)
	assert.Empty(t, withFactor(late.Suggestions, model.FactorPositionExperience))
	assert.Equal(t, 30, late.NextReviewTime)
}

func flipFlopGame(now int) model.GameState {
	return game(now, now,
		onField("m", model.PositionMidfield, 0, times{model.PositionMidfield: now}),
		benched("x", 100, times{model.PositionMidfield: 20}),
	)
}

func TestAnalyze_FlipFlopSuppression(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	history := []model.RotationRecord{{PlayerID: "x", Action: model.ActionOut, Position: model.PositionMidfield, GameTime: 100}}

	without := e.Analyze(flipFlopGame(150), nil)
	require.Len(t, without.Suggestions, 1)
	assert.Equal(t, "x", without.Suggestions[0].PlayerIn)

	within := e.Analyze(flipFlopGame(150), history)
	assert.Empty(t, within.Suggestions)

	after := e.Analyze(flipFlopGame(230), history)
	require.Len(t, after.Suggestions, 1)
	assert.Equal(t, "x", after.Suggestions[0].PlayerIn)
}

func TestAnalyze_FlipFlopOtherPositionNotSuppressed(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	history := []model.RotationRecord{{PlayerID: "x", Action: model.ActionOut, Position: model.PositionForward, GameTime: 100}}

	a := e.Analyze(flipFlopGame(150), history)

	require.Len(t, a.Suggestions, 1)
}

func TestAnalyze_Deterministic(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := lateArrivalGame()
	history := []model.RotationRecord{{PlayerID: "b3", Action: model.ActionOut, Position: model.PositionDefence, GameTime: 590}}

	first := e.Analyze(st, history)
	second := e.Analyze(st, history)

	assert.Equal(t, first, second)
	ids := map[string]bool{}
	for _, s := range first.Suggestions {
		assert.False(t, ids[s.ID], "duplicate id %s", s.ID)
		ids[s.ID] = true
	}
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := lateArrivalGame()
	before := st.Clone()

	_ = e.Analyze(st, nil)

	assert.Equal(t, before, st)
}

func TestAnalyze_SkipsUnknownPlayers(t *testing.T) {
	e := newTestEngine(t, DefaultThresholds())
	st := lateArrivalGame()
	st.ActivePlayersByPosition[model.PositionForward] = append([]string{"ghost"}, st.ActivePlayersByPosition[model.PositionForward]...)

	a := e.Analyze(st, nil)

	require.NotEmpty(t, a.Suggestions)
	for _, s := range a.Suggestions {
		assert.NotEqual(t, "ghost", s.PlayerIn)
		assert.NotEqual(t, "ghost", s.PlayerOut)
	}
}

// randomGame builds a consistent snapshot with exactly one newcomer and one long stint on field.
func randomGame(r *rand.Rand) (model.GameState, string) {
	now := 600 + r.Intn(1800)
	var players []model.Player
	n := 8 + r.Intn(10)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		pos := model.Positions[r.Intn(len(model.Positions))]
		last := r.Intn(now)
		played := 1 + r.Intn(now)
		if r.Intn(2) == 0 {
			players = append(players, onField(id, pos, last, times{pos: played}))
		} else {
			players = append(players, benched(id, last, times{pos: played}))
		}
	}
	pos := model.Positions[r.Intn(len(model.Positions))]
	players = append(players, onField("long", pos, now-301-r.Intn(300), times{pos: now}))
	players = append(players, benched("new", now-r.Intn(60), nil))
	r.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	st := game(now, r.Intn(900), players...)
	return st, "new"
}

func TestAnalyze_Properties(t *testing.T) {
	th := DefaultThresholds()
	th.TopN = 3
	e := newTestEngine(t, th)
	for seed := int64(1); seed <= 200; seed++ {
		r := rand.New(rand.NewSource(seed))
		st, newcomer := randomGame(r)

		a := e.Analyze(st, nil)

		require.LessOrEqual(t, len(a.Suggestions), 3, "seed %d", seed)
		require.NotEmpty(t, a.Suggestions, "seed %d", seed)
		assert.Equal(t, newcomer, a.Suggestions[0].PlayerIn, "seed %d", seed)
		assert.True(t, a.Suggestions[0].HasFactor(model.FactorLateArrival), "seed %d", seed)
		for _, s := range a.Suggestions {
			if s.PlayerIn != "" {
				assert.NotEqual(t, s.PlayerIn, s.PlayerOut, "seed %d", seed)
			}
		}
		assert.Equal(t, a, e.Analyze(st, nil), "seed %d", seed)
	}
}

func TestNewEngine_RejectsBadThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.TopN = 0
	_, err := NewEngine(th, zerolog.Nop())
	assert.Error(t, err)
}
