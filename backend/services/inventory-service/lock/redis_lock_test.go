package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLock_AcquireAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp()
	l := NewRedisLock(db, "order-confirm:", 30*time.Second)

	mock.ExpectSetNX("order-confirm:ORD-1", `.+`, 30*time.Second).SetVal(true)
	token, err := l.Acquire(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	mock.ExpectEvalSha(releaseScript.Hash(), []string{"order-confirm:ORD-1"}, token).SetVal(int64(1))
	assert.NoError(t, l.Release(context.Background(), "ORD-1", token))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLock_HeldElsewhere(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp()
	l := NewRedisLock(db, "", time.Minute)

	mock.ExpectSetNX("ORD-1", `.+`, time.Minute).SetVal(false)
	_, err := l.Acquire(context.Background(), "ORD-1")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLock_AcquireError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp()
	l := NewRedisLock(db, "", time.Minute)

	mock.ExpectSetNX("ORD-1", `.+`, time.Minute).SetErr(errors.New("connection refused"))
	_, err := l.Acquire(context.Background(), "ORD-1")
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrNotAcquired)
}
