package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts windows in Redis so limits survive restarts and can be
// shared between replicas. Every Redis failure degrades to an in-process
// fallback store, never to unchecked admission.
type RedisStore struct {
	rdb      *redis.Client
	fallback *MemoryStore
}

// NewStore returns a Redis-backed store when redisURL is set and reachable,
// else an in-process memory store.
func NewStore(redisURL string) Store {
	if redisURL == "" {
		return NewMemoryStore()
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("ratelimit: invalid redis URL, using memory store", slog.Any("error", err))
		return NewMemoryStore()
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("ratelimit: redis unreachable, using memory store", slog.Any("error", err))
		return NewMemoryStore()
	}
	slog.Info("ratelimit: redis store connected", slog.String("addr", opts.Addr))
	return &RedisStore{rdb: rdb, fallback: NewMemoryStore()}
}

// Take counts the event with INCR on a key scoped to the window's limit,
// period, and start, so rollover and reset come free with key expiry and
// same-period windows count apart. Denied events still count, the same
// semantics as the memory store.
func (s *RedisStore) Take(ctx context.Context, key string, w Window, now time.Time) Decision {
	windowStart := now.Truncate(w.Period)
	k := fmt.Sprintf("rl:%s:%d:%d:%d", key, w.Limit, int64(w.Period.Seconds()), windowStart.Unix())

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, w.Period+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("ratelimit: redis take failed, using local fallback", slog.Any("error", err))
		return s.fallback.Take(ctx, key, w, now)
	}

	used := incr.Val()
	allowed := used <= w.Limit
	remaining := w.Limit - used
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: allowed, Limit: w.Limit, Remaining: remaining, Window: w}
	if !allowed {
		d.RetryAfter = windowStart.Add(w.Period).Sub(now)
	}
	return d
}
