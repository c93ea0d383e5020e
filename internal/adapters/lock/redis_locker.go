// Package lock provides a Redis-backed per-event claim so overlapping reminder passes
// cannot both send the same reminder.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"eventreminder/internal/domain"
)

const keyPrefix = "reminder:lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects to Redis at addr.
func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// RedisLocker implements domain.ReminderLocker with SET NX PX.
type RedisLocker struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewRedisLocker returns a locker whose claims expire after ttl if never released.
func NewRedisLocker(client rueidis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// Key returns the Redis key guarding eventID.
func Key(eventID string) string {
	return keyPrefix + eventID
}

// Lock claims eventID with a fresh token. It returns domain.ErrLockNotAcquired if the key exists.
func (l *RedisLocker) Lock(ctx context.Context, eventID string) (func(context.Context) error, error) {
	key := Key(eventID)
	token := uuid.NewString()
	cmd := l.client.B().Set().Key(key).Value(token).Nx().PxMilliseconds(l.ttl.Milliseconds()).Build()
	if err := l.client.Do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, domain.ErrLockNotAcquired
		}
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	unlock := func(ctx context.Context) error {
		if err := releaseScript.Exec(ctx, l.client, []string{key}, []string{token}).Error(); err != nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}
	return unlock, nil
}

var _ domain.ReminderLocker = (*RedisLocker)(nil)
