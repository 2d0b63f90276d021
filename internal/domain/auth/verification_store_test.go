package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCodeStoreVerificationCode(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisCodeStore(client)
	ctx := context.Background()
	userID := uuid.New()
	codeKey := "verify:" + userID.String()
	attemptsKey := "verify_attempts:" + userID.String()

	mock.ExpectDel(attemptsKey).SetVal(0)
	mock.ExpectSet(codeKey, "123456", VerificationCodeTTL).SetVal("OK")
	require.NoError(t, store.SaveVerificationCode(ctx, userID, "123456", VerificationCodeTTL))

	mock.ExpectGet(codeKey).SetVal("123456")
	mock.ExpectIncr(attemptsKey).SetVal(1)
	mock.ExpectExpire(attemptsKey, VerificationCodeTTL).SetVal(true)
	ok, err := store.CheckVerificationCode(ctx, userID, "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet(codeKey).SetVal("123456")
	mock.ExpectDel(codeKey, attemptsKey).SetVal(2)
	ok, err = store.CheckVerificationCode(ctx, userID, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectGet(codeKey).RedisNil()
	ok, err = store.CheckVerificationCode(ctx, userID, "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCodeStoreBurnsCodeOnLastAttempt(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisCodeStore(client)
	ctx := context.Background()
	userID := uuid.New()
	codeKey := "verify:" + userID.String()
	attemptsKey := "verify_attempts:" + userID.String()

	mock.ExpectGet(codeKey).SetVal("123456")
	mock.ExpectIncr(attemptsKey).SetVal(maxVerifyAttempts)
	mock.ExpectDel(codeKey, attemptsKey).SetVal(2)
	ok, err := store.CheckVerificationCode(ctx, userID, "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet(codeKey).SetErr(errors.New("connection refused"))
	_, err = store.CheckVerificationCode(ctx, userID, "123456")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCodeStoreResetToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisCodeStore(client)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectSet("reset:h1", userID.String(), ResetTokenTTL).SetVal("OK")
	require.NoError(t, store.SaveResetToken(ctx, "h1", userID, ResetTokenTTL))

	mock.ExpectGetDel("reset:h1").SetVal(userID.String())
	got, err := store.ConsumeResetToken(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	mock.ExpectGetDel("reset:h1").RedisNil()
	_, err = store.ConsumeResetToken(ctx, "h1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	mock.ExpectGetDel("reset:garbage").SetVal("not-a-uuid")
	_, err = store.ConsumeResetToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCodeStoreWithoutClientExpires(t *testing.T) {
	store := NewRedisCodeStore(nil)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.SaveVerificationCode(ctx, userID, "123456", VerificationCodeTTL))
	require.NoError(t, store.SaveResetToken(ctx, "h1", userID, ResetTokenTTL))

	now = now.Add(VerificationCodeTTL)
	ok, err := store.CheckVerificationCode(ctx, userID, "123456")
	require.NoError(t, err)
	assert.False(t, ok, "code past its TTL must not verify")

	got, err := store.ConsumeResetToken(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	now = now.Add(ResetTokenTTL)
	require.NoError(t, store.SaveResetToken(ctx, "h2", userID, time.Minute))
	now = now.Add(time.Minute)
	_, err = store.ConsumeResetToken(ctx, "h2")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
