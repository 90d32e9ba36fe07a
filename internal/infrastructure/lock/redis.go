package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"
)

// RedisLocker holds keys in redis so several API instances serialize on the same batches.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	prefix  string
}

// RedisLockerConfig holds configuration for the redis locker
type RedisLockerConfig struct {
	TTL     time.Duration // how long a lock survives a crashed holder
	Wait    time.Duration // how long Acquire retries before ErrBusy
	Backoff time.Duration // delay between retries
	Prefix  string
}

// NewRedisLocker creates a locker on top of a redislock client
func NewRedisLocker(client *redislock.Client, cfg RedisLockerConfig) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 5 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 50 * time.Millisecond
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "lock:checkout:"
	}
	return &RedisLocker{
		client:  client,
		ttl:     cfg.TTL,
		wait:    cfg.Wait,
		backoff: cfg.Backoff,
		prefix:  cfg.Prefix,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	keys = normalize(keys)

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	held := make([]*redislock.Lock, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				log.Warn().Err(err).Str("key", held[i].Key()).Msg("failed to release redis lock")
			}
		}
	}

	for _, key := range keys {
		lk, err := l.client.Obtain(waitCtx, l.prefix+key, l.ttl, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(l.backoff),
		})
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			release()
			return nil, ErrBusy
		}
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, lk)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
