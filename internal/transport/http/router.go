package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voluntr/internal/platform/metrics"
	"voluntr/internal/platform/middleware"
	"voluntr/internal/ratelimit"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/platform/middleware/admin"
	"voluntr/pkg/platform/middleware/auth"
	"voluntr/pkg/platform/middleware/metadata"
	"voluntr/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// Module is a feature handler that mounts its routes on a router group.
type Module interface {
	Register(r chi.Router)
}

type PublicModule interface {
	RegisterPublic(r chi.Router)
}

type AdminModule interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports the state of one backing dependency.
type HealthCheck func(ctx context.Context) error

// Deps is everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Tokens      auth.TokenValidator
	Revocations auth.RevocationChecker
	RateLimits  *ratelimit.Middleware
	AdminToken  string
	// Clock defaults to the wall clock.
	Clock requesttime.Clock

	// Login is nil when no external identity provider is configured.
	Login    PublicModule
	Identity Module
	Events   interface {
		Module
		PublicModule
	}
	Applications  Module
	Organizations interface {
		Module
		AdminModule
	}
	Uploads interface {
		Module
		PublicModule
	}

	HealthChecks map[string]HealthCheck
}

// NewRouter assembles the route tree: public reads, the login flow, the
// operator API, and the session-bearing routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.WithClock(d.Clock))
	r.Use(middleware.Logger(d.Logger, d.Metrics))

	r.Get("/health", healthHandler(d.HealthChecks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		d.Events.RegisterPublic(r)
		d.Organizations.Register(r)
		d.Uploads.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(d.RateLimits.Limit(ratelimit.ClassAuth))
			if d.Login != nil {
				d.Login.RegisterPublic(r)
				return
			}
			r.Get("/auth/google/*", loginUnavailable)
		})

		if d.AdminToken != "" {
			r.Group(func(r chi.Router) {
				r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
				r.Use(middleware.ContentTypeJSON)
				d.Organizations.RegisterAdmin(r)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.Tokens, d.Revocations, d.Logger))

			r.Group(func(r chi.Router) {
				r.Use(middleware.ContentTypeJSON)
				r.Use(writesOnly(d.RateLimits.Limit(ratelimit.ClassWrite)))
				d.Identity.Register(r)
				d.Events.Register(r)
				d.Applications.Register(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(d.RateLimits.Limit(ratelimit.ClassUpload))
				d.Uploads.Register(r)
			})
		})
	})

	return r
}

// writesOnly applies limit to state-changing methods and lets reads through.
func writesOnly(limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

func loginUnavailable(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error":             "login_unavailable",
		"error_description": "external sign-in is not configured",
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
