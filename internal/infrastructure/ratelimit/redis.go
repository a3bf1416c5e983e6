package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// redisLimiter is a fixed-window counter shared by every API process
type redisLimiter struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable) Limiter {
	return &redisLimiter{client: client, now: time.Now}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	now := l.now()
	window := now.UnixNano() / int64(rule.Window)
	windowKey := redisKeyPrefix + key + ":" + strconv.FormatInt(window, 10)

	count, err := l.client.Incr(ctx, windowKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis incr failed: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, windowKey, rule.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("redis expire failed: %w", err)
		}
	}

	windowEnd := time.Unix(0, (window+1)*int64(rule.Window))
	if count > int64(rule.Limit) {
		return Result{Allowed: false, RetryAfter: windowEnd.Sub(now)}, nil
	}
	return Result{Allowed: true, Remaining: rule.Limit - int(count)}, nil
}
