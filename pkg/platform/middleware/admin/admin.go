package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/requestcontext"
)

// HeaderName carries the operator token for out-of-band administrative routes.
const HeaderName = "X-Admin-Token"

// RequireAdminToken guards operator endpoints such as organization
// verification. expectedToken may be a bcrypt hash ("$2a$..."), which keeps
// the plaintext out of the environment. An empty expected token rejects
// every request.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderName)
			if !tokenMatches(token, expectedToken) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatches(token, expected string) bool {
	if expected == "" || token == "" {
		return false
	}
	if strings.HasPrefix(expected, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(token)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}
