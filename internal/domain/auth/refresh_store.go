package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh:"

// RefreshStore persists hashed refresh tokens
type RefreshStore interface {
	Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Delete(ctx context.Context, tokenHash string) error
}

// RedisRefreshStore keeps refresh tokens in Redis with TTL.
// A nil client disables refresh: tokens are issued but never accepted.
type RedisRefreshStore struct {
	client *redis.Client
}

func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, refreshKeyPrefix+tokenHash, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *RedisRefreshStore) Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if s.client == nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.client.Get(ctx, refreshKeyPrefix+tokenHash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrInvalidRefreshToken
		}
		return uuid.Nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return id, nil
}

func (s *RedisRefreshStore) Delete(ctx context.Context, tokenHash string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, refreshKeyPrefix+tokenHash).Err()
}
