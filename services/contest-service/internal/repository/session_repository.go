package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores login tokens in Redis.
type SessionRepository interface {
	Create(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	// Lookup returns the user id behind token and whether the token is live.
	Lookup(ctx context.Context, token string) (uint64, bool, error)
	Delete(ctx context.Context, token string) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(token string) string {
	return fmt.Sprintf("contest:session:%s", token)
}

func (r *sessionRepository) Create(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(token), strconv.FormatUint(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Lookup(ctx context.Context, token string) (uint64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	val, err := r.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get session: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session %q: %w", val, err)
	}
	return userID, true, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
