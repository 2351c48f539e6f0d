package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores analyses as JSON under game:<id>:analysis.
func NewRedis(client *redis.Client, ttl time.Duration) AnalysisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:analysis", gameID)
}

func (c *redisCache) Get(ctx context.Context, gameID string) (model.RotationAnalysis, bool, error) {
	data, err := c.client.Get(ctx, c.key(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.RotationAnalysis{}, false, nil
	}
	if err != nil {
		return model.RotationAnalysis{}, false, fmt.Errorf("redis get analysis: %w", err)
	}
	var a model.RotationAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		return model.RotationAnalysis{}, false, fmt.Errorf("decode cached analysis: %w", err)
	}
	return a, true, nil
}

func (c *redisCache) Set(ctx context.Context, gameID string, a model.RotationAnalysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(gameID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set analysis: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, gameID string) error {
	if err := c.client.Del(ctx, c.key(gameID)).Err(); err != nil {
		return fmt.Errorf("redis delete analysis: %w", err)
	}
	return nil
}

// Pinger checks the redis connection for readiness.
type Pinger struct{ Client *redis.Client }

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
