package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRedis struct {
	values map[string]string
	err    error
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) CompareAndDelete(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockExclusiveAndOwnerChecked(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	ctx := context.Background()

	first, err := NewRedisLock(store, "tw:lock:cron-worker", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "tw:lock:cron-worker", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.values, "tw:lock:cron-worker", "non-owner must not release")

	require.NoError(t, first.Release(ctx))
	assert.NotContains(t, store.values, "tw:lock:cron-worker")
}

func TestRedisLockKeepsForeignHolderAfterExpiry(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	ctx := context.Background()

	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// ttl lapsed and another worker took the key
	store.values["k"] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["k"])
}

func TestRedisLockErrors(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(&memoryRedis{}, "", time.Minute)
	assert.Error(t, err)

	lock, err := NewRedisLock(&memoryRedis{values: map[string]string{}, err: errors.New("down")}, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
	_, err = lock.Acquire(context.Background())
	assert.ErrorContains(t, err, "down")
}

func TestNoopLockAlwaysGrants(t *testing.T) {
	ok, err := NoopLock{}.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, NoopLock{}.Release(context.Background()))
}
