// Package ratelimit throttles abusive clients on login and write endpoints.
package ratelimit

import (
	"context"
	"time"
)

// Class groups endpoints that share a budget.
type Class string

const (
	ClassAuth   Class = "auth"
	ClassWrite  Class = "write"
	ClassUpload Class = "upload"
)

// Rule allows Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// DefaultRules are used for classes missing from the configured rules.
var DefaultRules = map[Class]Rule{
	ClassAuth:   {Limit: 20, Window: time.Minute},
	ClassWrite:  {Limit: 60, Window: time.Minute},
	ClassUpload: {Limit: 10, Window: time.Minute},
}

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Store admits or rejects one request for key under rule.
type Store interface {
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}
