package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const defaultMaxKeys = 10_000

// InMemory keeps a token bucket per key. The least recently seen keys are
// evicted once maxKeys is reached, so memory stays bounded under IP churn.
type InMemory struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	now     func() time.Time
}

type InMemoryOption func(*InMemory)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemory) { s.now = now }
}

func NewInMemory(maxKeys int, opts ...InMemoryOption) (*InMemory, error) {
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	cache, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, err
	}
	s := &InMemory{buckets: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *InMemory) Allow(_ context.Context, key string, rule Rule) (Result, error) {
	interval := rule.Window / time.Duration(rule.Limit)
	now := s.now()

	s.mu.Lock()
	lim, ok := s.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(interval), rule.Limit)
		s.buckets.Add(key, lim)
	}
	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	s.mu.Unlock()

	res := Result{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetAt:   now.Add(time.Duration((float64(rule.Limit) - tokens) * float64(interval))),
	}
	if !allowed {
		res.RetryAfter = time.Duration((1 - tokens) * float64(interval))
	}
	return res, nil
}
