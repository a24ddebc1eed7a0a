package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/models"
)

const podiumGenerationKey = "contest:podium:generation"

// PodiumCache caches ranked podiums in Redis. Entries are keyed by a
// generation counter; bumping the counter orphans every cached podium, which
// then expires through its TTL.
type PodiumCache interface {
	Lookup(ctx context.Context, period clock.Period, n int) ([]*models.Submission, int64, bool, error)
	Store(ctx context.Context, generation int64, period clock.Period, n int, podium []*models.Submission) error
	Invalidate(ctx context.Context) error
}

type podiumCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPodiumCache(client *redis.Client, ttl time.Duration) PodiumCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &podiumCache{client: client, ttl: ttl}
}

func podiumKey(generation int64, period clock.Period, n int) string {
	return fmt.Sprintf("contest:podium:%d:%s:%d", generation, period, n)
}

func (c *podiumCache) generation(ctx context.Context) (int64, error) {
	val, err := c.client.Get(ctx, podiumGenerationKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get podium generation: %w", err)
	}
	gen, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt podium generation %q: %w", val, err)
	}
	return gen, nil
}

func (c *podiumCache) Lookup(ctx context.Context, period clock.Period, n int) ([]*models.Submission, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	payload, err := c.client.Get(ctx, podiumKey(gen, period, n)).Bytes()
	if err == redis.Nil {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("failed to get podium: %w", err)
	}

	var podium []*models.Submission
	if err := json.Unmarshal(payload, &podium); err != nil {
		return nil, gen, false, fmt.Errorf("failed to decode podium: %w", err)
	}
	if len(podium) != n {
		return nil, gen, false, nil
	}
	return podium, gen, true, nil
}

func (c *podiumCache) Store(ctx context.Context, generation int64, period clock.Period, n int, podium []*models.Submission) error {
	payload, err := json.Marshal(podium)
	if err != nil {
		return fmt.Errorf("failed to encode podium: %w", err)
	}
	if err := c.client.Set(ctx, podiumKey(generation, period, n), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store podium: %w", err)
	}
	return nil
}

func (c *podiumCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, podiumGenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump podium generation: %w", err)
	}
	return nil
}
