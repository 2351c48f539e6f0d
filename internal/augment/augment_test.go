package augment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

func analysis(lines ...string) model.RotationAnalysis {
	a := model.RotationAnalysis{OverallAssessment: "ok", NextReviewTime: 60}
	for i, l := range lines {
		a.Suggestions = append(a.Suggestions, model.RotationSuggestion{
			ID:           "s-" + string(rune('1'+i)),
			Reasoning:    l,
			PlayerIn:     "in",
			PlayerOut:    "out",
			Position:     model.PositionForward,
			UrgencyScore: float64(10 - i),
			Factors:      []model.Factor{model.FactorFatigue},
		})
	}
	return a
}

func TestApply(t *testing.T) {
	base := analysis("one", "two")

	t.Run("enhanced replaces text only", func(t *testing.T) {
		got := Apply(base, Enhanced{Reasoning: []string{"uno", ""}, Insight: "tight game"})
		assert.True(t, got.Enhanced)
		assert.Equal(t, "uno", got.Suggestions[0].Reasoning)
		assert.Equal(t, "two", got.Suggestions[1].Reasoning, "blank lines keep the original")
		assert.Equal(t, "tight game", got.Insight)
		assert.Equal(t, base.Suggestions[0].UrgencyScore, got.Suggestions[0].UrgencyScore)
		assert.Equal(t, "one", base.Suggestions[0].Reasoning, "input untouched")
	})

	t.Run("count mismatch ignored", func(t *testing.T) {
		got := Apply(base, Enhanced{Reasoning: []string{"uno"}})
		assert.Equal(t, base, got)
	})

	t.Run("unavailable ignored", func(t *testing.T) {
		assert.Equal(t, base, Apply(base, Unavailable{Reason: "down"}))
	})
}

func TestContextOf(t *testing.T) {
	st := model.GameState{
		CurrentQuarter: 3, QuarterTime: 75, TotalTime: 1875,
		Players:                 make([]model.Player, 5),
		ActivePlayersByPosition: map[model.Position][]string{model.PositionForward: {"a", "b"}, model.PositionDefence: {"c"}},
	}
	gc := ContextOf(st, "fine")
	assert.Equal(t, GameContext{Quarter: 3, QuarterTime: 75, TotalTime: 1875, RosterSize: 5, OnField: 3, Assessment: "fine"}, gc)
}

func geminiReply(t *testing.T, inner any) []byte {
	t.Helper()
	text, err := json.Marshal(inner)
	require.NoError(t, err)
	out, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": string(text)}}}}},
	})
	require.NoError(t, err)
	return out
}

func TestClient_Enhance(t *testing.T) {
	var gotPath, gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write(geminiReply(t, map[string]any{"reasoning": []string{"Give Ava a breather."}, "insight": " Even game. "}))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Model: "m1", Timeout: time.Second}, zerolog.Nop())
	out := c.Enhance(context.Background(), Request{Reasoning: []string{"Ava has been on 11:00"}, Game: GameContext{Quarter: 2, QuarterTime: 125}})

	require.IsType(t, Enhanced{}, out)
	e := out.(Enhanced)
	assert.Equal(t, []string{"Give Ava a breather."}, e.Reasoning)
	assert.Equal(t, "Even game.", e.Insight)
	assert.Equal(t, "/m1:generateContent", gotPath)
	assert.Equal(t, "k", gotKey)
	assert.Contains(t, gotBody, "Ava has been on 11:00")
	assert.Contains(t, gotBody, "Quarter 2, 2:05")
}

func TestClient_FailuresAreUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) }},
		{"wrong count", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(geminiReply(t, map[string]any{"reasoning": []string{"a", "b"}}))
		}},
		{"no candidates", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"candidates":[]}`)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"}, zerolog.Nop())
			out := c.Enhance(context.Background(), Request{Reasoning: []string{"x"}})
			assert.IsType(t, Unavailable{}, out)
		})
	}
}

func TestClient_Disabled(t *testing.T) {
	c := NewClient(Config{}, zerolog.Nop())
	assert.False(t, c.Enabled())
	out := c.Enhance(context.Background(), Request{Reasoning: []string{"x"}})
	assert.Equal(t, Unavailable{Reason: "augmentation disabled"}, out)
}

type memStore struct {
	mu   sync.Mutex
	data map[string]model.RotationAnalysis
}

func (m *memStore) Set(ctx context.Context, gameID string, a model.RotationAnalysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]model.RotationAnalysis{}
	}
	m.data[gameID] = a
	return nil
}

func (m *memStore) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, gameID)
	return nil
}

func (m *memStore) get(gameID string) model.RotationAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[gameID]
}

func (m *memStore) has(gameID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[gameID]
	return ok
}

// blockingStore holds writes for one game until released, like a slow redis round-trip.
type blockingStore struct {
	*memStore
	gameID  string
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Set(ctx context.Context, gameID string, a model.RotationAnalysis) error {
	if gameID == b.gameID {
		close(b.entered)
		<-b.release
	}
	return b.memStore.Set(ctx, gameID, a)
}

// deadlineEnhancer answers only once the call budget is spent.
type deadlineEnhancer struct{}

func (deadlineEnhancer) Enhance(ctx context.Context, req Request) Outcome {
	<-ctx.Done()
	return Enhanced{Reasoning: []string{strings.ToUpper(req.Reasoning[0])}}
}

// gatedEnhancer holds each call until its gate is released.
type gatedEnhancer struct {
	gates map[string]chan struct{}
}

func (g gatedEnhancer) Enhance(_ context.Context, req Request) Outcome {
	<-g.gates[req.Reasoning[0]]
	return Enhanced{Reasoning: []string{strings.ToUpper(req.Reasoning[0])}, Insight: "from " + req.Reasoning[0]}
}

func TestCoordinator_PublishesEnhanced(t *testing.T) {
	gate := make(chan struct{})
	store := &memStore{}
	c := NewCoordinator(gatedEnhancer{gates: map[string]chan struct{}{"first": gate}}, store, time.Second, zerolog.Nop())

	done, err := c.Start(context.Background(), "g1", analysis("first"), GameContext{})
	require.NoError(t, err)
	assert.False(t, store.get("g1").Enhanced, "base analysis is published first")

	close(gate)
	<-done
	got := store.get("g1")
	assert.True(t, got.Enhanced)
	assert.Equal(t, "FIRST", got.Suggestions[0].Reasoning)
}

func TestCoordinator_DiscardsStale(t *testing.T) {
	slow, fast := make(chan struct{}), make(chan struct{})
	store := &memStore{}
	c := NewCoordinator(gatedEnhancer{gates: map[string]chan struct{}{"old": slow, "new": fast}}, store, time.Second, zerolog.Nop())

	oldDone, err := c.Start(context.Background(), "g1", analysis("old"), GameContext{})
	require.NoError(t, err)
	newDone, err := c.Start(context.Background(), "g1", analysis("new"), GameContext{})
	require.NoError(t, err)

	close(fast)
	<-newDone
	close(slow)
	<-oldDone
	c.Wait()

	got := store.get("g1")
	assert.Equal(t, "NEW", got.Suggestions[0].Reasoning)
	assert.Equal(t, "from new", got.Insight)
}

func TestCoordinator_NoEnhancer(t *testing.T) {
	store := &memStore{}
	c := NewCoordinator(nil, store, 0, zerolog.Nop())

	done, err := c.Start(context.Background(), "g1", analysis("only"), GameContext{})
	require.NoError(t, err)
	<-done
	assert.Equal(t, "only", store.get("g1").Suggestions[0].Reasoning)
}

func TestCoordinator_InvalidateDropsLatestAndInFlight(t *testing.T) {
	gate := make(chan struct{})
	store := &memStore{}
	c := NewCoordinator(gatedEnhancer{gates: map[string]chan struct{}{"before": gate}}, store, time.Second, zerolog.Nop())

	done, err := c.Start(context.Background(), "g1", analysis("before"), GameContext{})
	require.NoError(t, err)
	require.True(t, store.has("g1"))

	require.NoError(t, c.Invalidate(context.Background(), "g1"))
	assert.False(t, store.has("g1"), "lineup change drops the published analysis")

	close(gate)
	<-done
	assert.False(t, store.has("g1"), "enhancement of the old lineup must not come back")

	require.NoError(t, c.Invalidate(context.Background(), "never-analysed"))
}

func TestCoordinator_SlowEnhancementStillStored(t *testing.T) {
	store := &memStore{}
	c := NewCoordinator(deadlineEnhancer{}, store, 20*time.Millisecond, zerolog.Nop())

	done, err := c.Start(context.Background(), "g1", analysis("late"), GameContext{})
	require.NoError(t, err)
	<-done

	got := store.get("g1")
	assert.True(t, got.Enhanced, "store write gets its own deadline")
	assert.Equal(t, "LATE", got.Suggestions[0].Reasoning)
}

func TestCoordinator_GamesDoNotWaitOnEachOther(t *testing.T) {
	store := &blockingStore{memStore: &memStore{}, gameID: "slow", entered: make(chan struct{}), release: make(chan struct{})}
	c := NewCoordinator(nil, store, time.Second, zerolog.Nop())

	slowDone := make(chan error, 1)
	go func() {
		_, err := c.Start(context.Background(), "slow", analysis("a"), GameContext{})
		slowDone <- err
	}()
	<-store.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := c.Start(context.Background(), "fast", analysis("b"), GameContext{})
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publishing one game waited on another game's store write")
	}

	close(store.release)
	require.NoError(t, <-slowDone)
	assert.True(t, store.has("slow"))
	assert.True(t, store.has("fast"))
}
