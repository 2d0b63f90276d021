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

func TestRedisRefreshStore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisRefreshStore(client)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectSet("refresh:h1", userID.String(), time.Hour).SetVal("OK")
	require.NoError(t, store.Save(ctx, "h1", userID, time.Hour))

	mock.ExpectGet("refresh:h1").SetVal(userID.String())
	got, err := store.Lookup(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	mock.ExpectGet("refresh:missing").RedisNil()
	_, err = store.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	mock.ExpectGet("refresh:down").SetErr(errors.New("connection refused"))
	_, err = store.Lookup(ctx, "down")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidRefreshToken))

	mock.ExpectDel("refresh:h1").SetVal(1)
	require.NoError(t, store.Delete(ctx, "h1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRefreshStoreWithoutClient(t *testing.T) {
	store := NewRedisRefreshStore(nil)
	ctx := context.Background()

	assert.NoError(t, store.Save(ctx, "h", uuid.New(), time.Hour))
	_, err := store.Lookup(ctx, "h")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.NoError(t, store.Delete(ctx, "h"))
}
