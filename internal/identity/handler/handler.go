package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"voluntr/internal/identity/models"
	"voluntr/internal/identity/service"
	orgmodels "voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/platform/middleware/auth"
	"voluntr/pkg/requestcontext"
)

const (
	stateCookie   = "voluntr_oauth_state"
	stateLifetime = 10 * time.Minute
)

type Service interface {
	Login(ctx context.Context, ext models.ExternalIdentity) (*service.Session, error)
	Logout(ctx context.Context, jti string) error
	Get(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	CompleteVolunteerOnboarding(ctx context.Context, accountID id.AccountID, profile models.VolunteerProfile) (*models.Account, error)
	CompleteNGOOnboarding(ctx context.Context, accountID id.AccountID, profile orgmodels.Profile) (*models.Account, *orgmodels.Organization, error)
}

// Provider is the external identity provider's authorization code flow.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (models.ExternalIdentity, error)
}

type Guard interface {
	RequireAuthenticated(ctx context.Context) (*models.Account, error)
}

type Handler struct {
	service       Service
	provider      Provider
	guard         Guard
	logger        *slog.Logger
	secureCookies bool
}

type Option func(*Handler)

// WithSecureCookies marks session and state cookies Secure.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) { h.secureCookies = secure }
}

func New(service Service, provider Provider, guard Guard, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, provider: provider, guard: guard, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterPublic mounts the login flow.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/auth/google/login", h.HandleLogin)
	r.Get("/auth/google/callback", h.HandleCallback)
}

// Register mounts the session-bearing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/me", h.HandleMe)
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/onboarding", h.HandleOnboarding)
	r.Post("/onboarding/volunteer", h.HandleOnboardVolunteer)
	r.Post("/onboarding/ngo", h.HandleOnboardNGO)
}

// HandleLogin handles GET /auth/google/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := newState()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate oauth state", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start login"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback handles GET /auth/google/callback. A successful login sets
// the session cookie and lands on the account's next route.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	q := r.URL.Query()

	if reason := q.Get("error"); reason != "" {
		h.logger.WarnContext(ctx, "login denied by provider", "request_id", requestID, "reason", reason)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "login was not completed"))
		return
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		h.logger.WarnContext(ctx, "login state mismatch", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "login state mismatch"))
		return
	}
	h.clearCookie(w, stateCookie, "/auth/google")

	code := q.Get("code")
	if code == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "authorization code is required"))
		return
	}
	ext, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "code exchange failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.Login(ctx, ext)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.InfoContext(ctx, "login completed",
		"request_id", requestID,
		"account_id", session.Account.ID,
		"state", session.Account.OnboardingState(),
	)
	http.Redirect(w, r, session.Account.NextRoute(), http.StatusSeeOther)
}

// HandleLogout handles POST /auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx, requestcontext.TokenID(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "logout failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.clearCookie(w, auth.SessionCookie, "/")
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /me. Role and onboarding state are re-read on every
// call.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	account, err := h.guard.RequireAuthenticated(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewMeResponse(account))
}

// HandleDashboard handles GET /dashboard by redirecting to the role's
// dashboard, or to onboarding.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	account, err := h.guard.RequireAuthenticated(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	http.Redirect(w, r, account.NextRoute(), http.StatusSeeOther)
}

// HandleOnboarding handles GET /onboarding. Onboarded accounts are sent back
// to their dashboard.
func (h *Handler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	account, err := h.guard.RequireAuthenticated(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if account.IsOnboarded() {
		http.Redirect(w, r, models.DashboardRoute(account.Role), http.StatusSeeOther)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewMeResponse(account))
}

// HandleOnboardVolunteer handles POST /onboarding/volunteer.
func (h *Handler) HandleOnboardVolunteer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	account, err := h.guard.RequireAuthenticated(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req VolunteerOnboardingRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid volunteer onboarding request", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	profile, err := req.Profile()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.CompleteVolunteerOnboarding(ctx, account.ID, profile)
	if err != nil {
		h.logger.WarnContext(ctx, "volunteer onboarding failed", "request_id", requestID, "account_id", account.ID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewMeResponse(updated))
}

// HandleOnboardNGO handles POST /onboarding/ngo.
func (h *Handler) HandleOnboardNGO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	account, err := h.guard.RequireAuthenticated(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req NGOOnboardingRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid ngo onboarding request", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	updated, org, err := h.service.CompleteNGOOnboarding(ctx, account.ID, req.Profile())
	if err != nil {
		h.logger.WarnContext(ctx, "ngo onboarding failed", "request_id", requestID, "account_id", account.ID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	resp := NewMeResponse(updated)
	resp.Organization = org
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
