package ratelimit

import (
	"context"

	"kindled-backend/pkg/logger"
)

// fallbackLimiter asks primary first and falls back to secondary when
// primary errors, so a Redis outage degrades to per-process limits.
type fallbackLimiter struct {
	primary   Limiter
	secondary Limiter
}

func NewFallbackLimiter(primary, secondary Limiter) Limiter {
	return &fallbackLimiter{primary: primary, secondary: secondary}
}

func (l *fallbackLimiter) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	res, err := l.primary.Allow(ctx, key, rule)
	if err == nil {
		return res, nil
	}

	logger.Warn("primary rate limiter failed, using in-memory limiter", map[string]interface{}{
		"error": err.Error(),
	})
	return l.secondary.Allow(ctx, key, rule)
}
