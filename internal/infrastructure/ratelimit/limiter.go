// Package ratelimit counts requests per client and route class.
package ratelimit

import (
	"context"
	"time"
)

// Rule is a request budget: Limit requests per Window
type Rule struct {
	Limit  int
	Window time.Duration
}

// Result of a single Allow call
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether one more request under key fits rule
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}
