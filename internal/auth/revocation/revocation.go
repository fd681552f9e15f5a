// Package revocation tracks logged-out token IDs until the tokens expire.
package revocation

import (
	"context"
	"fmt"
	"time"

	"voluntr/pkg/platform/sentinel"
)

// List records revoked jtis. Implementations expire entries after ttl so the
// list never outgrows the set of still-valid tokens.
type List interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
