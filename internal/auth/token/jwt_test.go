package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
)

var (
	jwtService = NewJWTService("test-signing-key-0123456789", "voluntr-test")
	accountID  = id.NewAccountID()
	sessionID  = id.NewSessionID()
)

func Test_GenerateAccessToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(accountID, sessionID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.JTI)

	claims, err := jwtService.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_Rejects(t *testing.T) {
	expired, err := jwtService.GenerateAccessToken(accountID, sessionID, -time.Hour)
	require.NoError(t, err)

	otherKey, err := NewJWTService("another-signing-key-9876543210", "voluntr-test").GenerateAccessToken(accountID, sessionID, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("test-signing-key-0123456789", "someone-else").GenerateAccessToken(accountID, sessionID, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AccountID: accountID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"garbage", "invalid-token-string", "invalid token"},
		{"expired", expired.Token, "token has expired"},
		{"wrong key", otherKey.Token, "invalid token"},
		{"wrong issuer", otherIssuer.Token, "invalid token"},
		{"alg none", unsigned, "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwtService.ValidateToken(tt.token)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			assert.Equal(t, tt.msg, dErrors.Message(err))
		})
	}
}

func Test_MiddlewareValidator_MapsClaims(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(accountID, sessionID, time.Hour)
	require.NoError(t, err)

	claims, err := NewMiddlewareValidator(jwtService).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, issued.JTI, claims.JTI)
}
