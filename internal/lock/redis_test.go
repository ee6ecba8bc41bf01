package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, ttl, nil), mr
}

func TestRedisLocker_SecondLockWaitsForRelease(t *testing.T) {
	locker, mr := newTestRedisLocker(t, 10*time.Second)

	unlock, err := locker.Lock(context.Background(), "ABC-123456-X9Z")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"ABC-123456-X9Z"))

	acquired := make(chan func(), 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		second, err := locker.Lock(ctx, "ABC-123456-X9Z")
		if !assert.NoError(t, err) {
			return
		}
		acquired <- second
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(150 * time.Millisecond):
	}

	unlock()

	select {
	case second := <-acquired:
		second()
	case <-time.After(3 * time.Second):
		t.Fatal("second lock was not acquired after release")
	}
	assert.False(t, mr.Exists(keyPrefix+"ABC-123456-X9Z"))
}

func TestRedisLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker, _ := newTestRedisLocker(t, 10*time.Second)

	first, err := locker.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer first()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	second, err := locker.Lock(ctx, "B")
	require.NoError(t, err)
	second()
}

func TestRedisLocker_ContextCancel(t *testing.T) {
	locker, _ := newTestRedisLocker(t, 10*time.Second)

	unlock, err := locker.Lock(context.Background(), "ABC-123456-X9Z")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "ABC-123456-X9Z")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestRedisLocker_ExpiredReleaseKeepsNewHolder(t *testing.T) {
	locker, mr := newTestRedisLocker(t, time.Second)
	key := keyPrefix + "ABC-123456-X9Z"

	stale, err := locker.Lock(context.Background(), "ABC-123456-X9Z")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))

	current, err := locker.Lock(context.Background(), "ABC-123456-X9Z")
	require.NoError(t, err)
	token, err := mr.Get(key)
	require.NoError(t, err)

	stale()

	got, err := mr.Get(key)
	require.NoError(t, err, "releasing an expired lock must not delete the new holder's key")
	assert.Equal(t, token, got)

	current()
	assert.False(t, mr.Exists(key))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

var _ Locker = (*RedisLocker)(nil)
