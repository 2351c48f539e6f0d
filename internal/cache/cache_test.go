package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

func sampleAnalysis() model.RotationAnalysis {
	return model.RotationAnalysis{
		Suggestions: []model.RotationSuggestion{{
			ID: "fatigue-1", Type: model.SuggestionSwap, Priority: model.PriorityUrgent,
			PlayerIn: "a", PlayerOut: "b", Position: model.PositionDefence, UrgencyScore: 7.5,
			Factors: []model.Factor{model.FactorFatigue},
		}},
		OverallAssessment: "1 urgent rotation needed - make this change soon.",
		NextReviewTime:    60,
		Insight:           "close game",
		Enhanced:          true,
	}
}

func runCacheSuite(t *testing.T, c AnalysisCache) {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()

	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, id, sampleAnalysis()))
	got, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleAnalysis(), got)

	next := sampleAnalysis()
	next.Enhanced = false
	require.NoError(t, c.Set(ctx, id, next))
	got, _, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Enhanced)

	require.NoError(t, c.Delete(ctx, id))
	_, ok, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, c.Delete(ctx, id), "deleting a missing entry is fine")
}

func TestMemoryCache(t *testing.T) {
	runCacheSuite(t, NewMemory(time.Minute))
}

func TestMemoryCache_Expires(t *testing.T) {
	c := NewMemory(time.Minute).(*memoryCache)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(context.Background(), "g", sampleAnalysis()))

	now = now.Add(2 * time.Minute)
	_, ok, err := c.Get(context.Background(), "g")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_ExpiryKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute).(*memoryCache)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "g", sampleAnalysis()))
	now = now.Add(2 * time.Minute)

	fresh := sampleAnalysis()
	fresh.NextReviewTime = 120
	calls := 0
	c.now = func() time.Time {
		calls++
		if calls == 1 {
			// A writer publishes between the expiry check and the delete.
			require.NoError(t, c.Set(ctx, "g", fresh))
		}
		return now
	}

	got, ok, err := c.Get(ctx, "g")
	require.NoError(t, err)
	require.True(t, ok, "fresh entry must survive the expiry of the old one")
	assert.Equal(t, 120, got.NextReviewTime)

	got, ok, err = c.Get(ctx, "g")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 120, got.NextReviewTime)
}

func TestMemoryCache_IsolatesCallers(t *testing.T) {
	c := NewMemory(0)
	a := sampleAnalysis()
	require.NoError(t, c.Set(context.Background(), "g", a))
	a.Suggestions[0].Factors[0] = model.FactorInclusion

	got, _, _ := c.Get(context.Background(), "g")
	assert.Equal(t, model.FactorFatigue, got.Suggestions[0].Factors[0])
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, Pinger{Client: client}.Ping(context.Background()))

	runCacheSuite(t, NewRedis(client, time.Minute))
}
