// Package provider adapts external identity providers to ExternalIdentity.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"voluntr/internal/identity/models"
	dErrors "voluntr/pkg/domain-errors"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	providerName      = "google"
)

// Google runs the authorization code flow against Google and reads the
// OpenID userinfo document.
type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

type GoogleOption func(*Google)

// WithEndpoints points the flow at different token and userinfo URLs.
func WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) GoogleOption {
	return func(g *Google) {
		g.config.Endpoint = endpoint
		g.userInfoURL = userInfoURL
	}
}

func NewGoogle(clientID, clientSecret, redirectURL string, opts ...GoogleOption) *Google {
	g := &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type userInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the authorization code for a token and fetches the
// identity it vouches for. Unverified emails are dropped.
func (g *Google) Exchange(ctx context.Context, code string) (models.ExternalIdentity, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return models.ExternalIdentity{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "authorization code exchange failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return models.ExternalIdentity{}, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := g.config.Client(ctx, tok).Do(req)
	if err != nil {
		return models.ExternalIdentity{}, dErrors.Wrap(err, dErrors.CodeInternal, "userinfo request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.ExternalIdentity{}, dErrors.New(dErrors.CodeUnauthorized,
			fmt.Sprintf("userinfo returned %d: %s", resp.StatusCode, body))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return models.ExternalIdentity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode userinfo")
	}

	ext := models.ExternalIdentity{
		DisplayName: info.Name,
		AvatarURL:   info.Picture,
		Provider:    providerName,
		Subject:     info.Subject,
	}
	if info.EmailVerified {
		ext.Email = info.Email
	}
	return ext, nil
}
