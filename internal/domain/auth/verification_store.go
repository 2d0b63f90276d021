package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	verifyKeyPrefix   = "verify:"
	attemptsKeyPrefix = "verify_attempts:"
	resetKeyPrefix    = "reset:"

	// maxVerifyAttempts wrong guesses burn the code.
	maxVerifyAttempts = 5
)

// CodeStore keeps email verification codes and password reset tokens.
type CodeStore interface {
	SaveVerificationCode(ctx context.Context, userID uuid.UUID, code string, ttl time.Duration) error
	CheckVerificationCode(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

// RedisCodeStore keeps codes in Redis with TTL.
// A nil client keeps them in process memory so a single instance works without Redis.
type RedisCodeStore struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]localEntry
	now   func() time.Time
}

type localEntry struct {
	value   string
	expires time.Time
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client, local: map[string]localEntry{}, now: time.Now}
}

func (s *RedisCodeStore) SaveVerificationCode(ctx context.Context, userID uuid.UUID, code string, ttl time.Duration) error {
	if err := s.del(ctx, attemptsKeyPrefix+userID.String()); err != nil {
		return fmt.Errorf("reset verification attempts: %w", err)
	}
	if err := s.set(ctx, verifyKeyPrefix+userID.String(), code, ttl); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

// CheckVerificationCode consumes the code on a match.
func (s *RedisCodeStore) CheckVerificationCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	key := verifyKeyPrefix + userID.String()
	attemptsKey := attemptsKeyPrefix + userID.String()

	stored, ok, err := s.get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("lookup verification code: %w", err)
	}
	if !ok {
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		if err := s.del(ctx, key, attemptsKey); err != nil {
			return false, fmt.Errorf("delete verification code: %w", err)
		}
		return true, nil
	}

	attempts, err := s.incr(ctx, attemptsKey, VerificationCodeTTL)
	if err != nil {
		return false, fmt.Errorf("count verification attempts: %w", err)
	}
	if attempts >= maxVerifyAttempts {
		if err := s.del(ctx, key, attemptsKey); err != nil {
			return false, fmt.Errorf("delete verification code: %w", err)
		}
	}
	return false, nil
}

func (s *RedisCodeStore) SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.set(ctx, resetKeyPrefix+tokenHash, userID.String(), ttl); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken returns the token's user and deletes it in one step.
func (s *RedisCodeStore) ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	val, ok, err := s.getDel(ctx, resetKeyPrefix+tokenHash)
	if err != nil {
		return uuid.Nil, fmt.Errorf("consume reset token: %w", err)
	}
	if !ok {
		return uuid.Nil, ErrInvalidResetToken
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrInvalidResetToken
	}
	return id, nil
}

func (s *RedisCodeStore) set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.client != nil {
		return s.client.Set(ctx, key, value, ttl).Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[key] = localEntry{value: value, expires: s.now().Add(ttl)}
	return nil
}

func (s *RedisCodeStore) get(ctx context.Context, key string) (string, bool, error) {
	if s.client != nil {
		val, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return val, true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(key)
}

func (s *RedisCodeStore) getDel(ctx context.Context, key string) (string, bool, error) {
	if s.client != nil {
		val, err := s.client.GetDel(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return val, true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok, _ := s.lookupLocked(key)
	delete(s.local, key)
	return val, ok, nil
}

func (s *RedisCodeStore) del(ctx context.Context, keys ...string) error {
	if s.client != nil {
		return s.client.Del(ctx, keys...).Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.local, k)
	}
	return nil
}

func (s *RedisCodeStore) incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.client != nil {
		n, err := s.client.Incr(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		if n == 1 {
			if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
				return 0, err
			}
		}
		return n, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok, _ := s.lookupLocked(key)
	n := int64(1)
	expires := s.now().Add(ttl)
	if ok {
		prev, _ := strconv.ParseInt(val, 10, 64)
		n = prev + 1
		expires = s.local[key].expires
	}
	s.local[key] = localEntry{value: strconv.FormatInt(n, 10), expires: expires}
	return n, nil
}

func (s *RedisCodeStore) lookupLocked(key string) (string, bool, error) {
	e, ok := s.local[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.local, key)
		return "", false, nil
	}
	return e.value, true, nil
}
