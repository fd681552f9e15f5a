package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/platform/middleware/metadata"
	"voluntr/pkg/requestcontext"
)

// Middleware applies per-class budgets keyed by account when a session is
// present and by client IP otherwise. Store failures admit the request.
type Middleware struct {
	store    Store
	rules    map[Class]Rule
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every limit into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

// WithRule overrides the budget for one class.
func WithRule(class Class, rule Rule) Option {
	return func(m *Middleware) {
		if rule.Limit > 0 && rule.Window > 0 {
			m.rules[class] = rule
		}
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{store: store, rules: make(map[Class]Rule, len(DefaultRules)), logger: logger}
	for class, rule := range DefaultRules {
		m.rules[class] = rule
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit returns middleware enforcing the budget of class.
func (m *Middleware) Limit(class Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			subject := "ip:" + metadata.ClientIPFromRequest(r)
			if accountID := requestcontext.AccountID(ctx); !accountID.IsNil() {
				subject = "account:" + accountID.String()
			}

			res, err := m.store.Allow(ctx, string(class)+":"+subject, m.rules[class])
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			if !res.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"subject", subject,
					"request_id", requestcontext.RequestID(ctx),
				)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "too many requests, try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
