// Package ratelimit implements a redis-backed token bucket used to shield
// the booking endpoints from request bursts. When redis is unreachable the
// limiter fails open so the API stays available.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ride-share/internal/general/config"
	"ride-share/internal/general/logger"
)

// bucketScript refills and consumes atomically inside redis, so every
// instance of the booking service shares the same buckets.
var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = now_ms - last_refill
		if elapsed < 0 then elapsed = 0 end
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = interval_ms - (now_ms - last_refill)
		if retry_after_ms < 0 then retry_after_ms = 0 end
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter is a distributed token bucket. One token is refilled per
// RefillInterval up to Capacity; each request consumes one token.
type Limiter struct {
	rdb      *redis.Client
	logger   *logger.Logger
	capacity int
	interval time.Duration
}

// NewClient dials redis using the application config. It returns nil when
// the server cannot be reached; callers treat a nil client as "limiter off".
func NewClient(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error(ctx, "redis_connect", "redis unreachable, rate limiting disabled", err, nil)
		_ = client.Close()
		return nil
	}

	return client
}

// New builds a Limiter from config. A nil redis client or a disabled config
// yields a nil Limiter, which every method treats as "always allow".
func New(rdb *redis.Client, cfg *config.Config, log *logger.Logger) *Limiter {
	if rdb == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return &Limiter{
		rdb:      rdb,
		logger:   log,
		capacity: cfg.RateLimit.Capacity,
		interval: cfg.RateLimit.RefillInterval,
	}
}

// Allow consumes one token from the caller's bucket. Errors from redis fail
// open: the request is allowed and the error logged, never surfaced.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}

	// buckets for idle callers expire after a full refill plus slack
	ttl := time.Duration(l.capacity)*l.interval + time.Minute

	vals, err := bucketScript.Run(ctx, l.rdb,
		[]string{"ratelimit:" + key},
		time.Now().UnixMilli(),
		l.capacity,
		l.interval.Milliseconds(),
		int64(ttl/time.Second),
	).Int64Slice()
	if err != nil {
		l.logger.Error(ctx, "ratelimit_check", "bucket script failed, allowing request", err, map[string]any{"key": key})
		return Decision{Allowed: true}
	}
	if len(vals) != 3 {
		l.logger.Error(ctx, "ratelimit_check", "unexpected bucket script result, allowing request", nil, map[string]any{"key": key})
		return Decision{Allowed: true}
	}

	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}
}
