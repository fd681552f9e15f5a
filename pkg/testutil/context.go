package testutil

import (
	"net/http"

	id "voluntr/pkg/domain"
	"voluntr/pkg/requestcontext"
)

// WithAccountID simulates the auth middleware for an authenticated request.
func WithAccountID(req *http.Request, accountID id.AccountID) *http.Request {
	return req.WithContext(requestcontext.WithAccountID(req.Context(), accountID))
}

// WithSession sets the account, session and token identifiers the auth
// middleware would place on the context.
func WithSession(req *http.Request, accountID id.AccountID, sessionID id.SessionID, jti string) *http.Request {
	ctx := requestcontext.WithAccountID(req.Context(), accountID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	ctx = requestcontext.WithTokenID(ctx, jti)
	return req.WithContext(ctx)
}
