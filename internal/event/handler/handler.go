package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voluntr/internal/accesscontrol"
	"voluntr/internal/event/models"
	"voluntr/internal/event/service"
	identitymodels "voluntr/internal/identity/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/requestcontext"
)

type Service interface {
	CreateEvent(ctx context.Context, admin id.AccountID, draft models.Draft) (*models.Event, error)
	ListForOrganization(ctx context.Context, admin id.AccountID) ([]*models.Event, error)
	ListDiscoverable(ctx context.Context, text, cause string) ([]service.View, error)
	Get(ctx context.Context, eventID id.EventID) (*service.View, error)
	Stats(ctx context.Context, admin id.AccountID) (service.Stats, error)
}

type Guard interface {
	RequirePermission(ctx context.Context, obj accesscontrol.Object, act accesscontrol.Action) (*identitymodels.Account, error)
}

type Handler struct {
	service Service
	guard   Guard
	logger  *slog.Logger
}

func New(service Service, guard Guard, logger *slog.Logger) *Handler {
	return &Handler{service: service, guard: guard, logger: logger}
}

// RegisterPublic mounts the unauthenticated discovery endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/events", h.HandleDiscover)
	r.Get("/events/{id}", h.HandleGet)
}

// Register mounts the endpoints that need a session.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleCreate)
	r.Get("/events/mine", h.HandleListMine)
	r.Get("/dashboard/ngo", h.HandleDashboard)
	r.Get("/dashboard/ngo/stats", h.HandleStats)
}

// HandleCreate handles POST /events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjEvent, accesscontrol.ActCreate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req CreateEventRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create event request", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.CreateEvent(ctx, admin.ID, req.Draft())
	if err != nil {
		h.logger.ErrorContext(ctx, "create event failed",
			"request_id", requestID,
			"account_id", admin.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

// HandleListMine handles GET /events/mine.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjEvent, accesscontrol.ActListOwn)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.ListForOrganization(ctx, admin.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list own events failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse[*models.Event]{Events: events})
}

// HandleDashboard handles GET /dashboard/ngo, the landing page after NGO
// onboarding: the stats figures plus the organization's events.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjDashboard, accesscontrol.ActStats)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Stats(ctx, admin.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard stats failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.ListForOrganization(ctx, admin.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard events failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DashboardResponse{Stats: stats, Events: events})
}

// HandleDiscover handles GET /events?q=&cause=.
func (h *Handler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	views, err := h.service.ListDiscoverable(ctx, q.Get("q"), q.Get("cause"))
	if err != nil {
		h.logger.ErrorContext(ctx, "discover events failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse[service.View]{Events: views})
}

// HandleGet handles GET /events/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Get(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleStats handles GET /dashboard/ngo/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjDashboard, accesscontrol.ActStats)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.Stats(ctx, admin.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard stats failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
