// Package requesttime pins a single "now" per request so that timestamps
// written during one request (appliedAt, audit rows) agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"voluntr/pkg/requestcontext"
)

// Clock returns the instant a request starts at.
type Clock func() time.Time

// WithClock stamps requests with clock, truncated to microseconds so that
// values read back from postgres compare equal. A nil clock uses time.Now.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	if clock == nil {
		clock = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := clock().UTC().Truncate(time.Microsecond)
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), now)))
		})
	}
}
