package lock

import (
	"context"
	"testing"
	"time"

	"eventreminder/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return NewRedisLocker(client, ttl), mr
}

func TestKey(t *testing.T) {
	assert.Equal(t, "reminder:lock:ev-1", Key("ev-1"))
}

func TestRedisLocker_Lock(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t, 2*time.Minute)

	unlock, err := locker.Lock(ctx, "ev-1")
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists(Key("ev-1")))
	assert.Equal(t, 2*time.Minute, mr.TTL(Key("ev-1")))

	_, err = locker.Lock(ctx, "ev-1")
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	// Other events are independent.
	unlockOther, err := locker.Lock(ctx, "ev-2")
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))
}

func TestRedisLocker_ReleaseAllowsReclaim(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t, 2*time.Minute)

	unlock, err := locker.Lock(ctx, "ev-1")
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists(Key("ev-1")))

	unlock, err = locker.Lock(ctx, "ev-1")
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestRedisLocker_ExpiredClaimDoesNotReleaseNewOwner(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t, time.Minute)

	staleUnlock, err := locker.Lock(ctx, "ev-1")
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)
	require.False(t, mr.Exists(Key("ev-1")))

	unlock, err := locker.Lock(ctx, "ev-1")
	require.NoError(t, err)
	owner, err := mr.Get(Key("ev-1"))
	require.NoError(t, err)

	require.NoError(t, staleUnlock(ctx))
	current, err := mr.Get(Key("ev-1"))
	require.NoError(t, err, "release with an expired token must keep the new claim")
	assert.Equal(t, owner, current)

	_, err = locker.Lock(ctx, "ev-1")
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists(Key("ev-1")))
}

func TestRedisLocker_ServerError(t *testing.T) {
	locker, mr := newTestLocker(t, time.Minute)
	mr.SetError("ERR injected failure")

	_, err := locker.Lock(context.Background(), "ev-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLockNotAcquired)
	assert.Contains(t, err.Error(), Key("ev-1"))
}
