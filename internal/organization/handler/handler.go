package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	eventmodels "voluntr/internal/event/models"
	"voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]*models.Organization, error)
	Get(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error)
	SetVerification(ctx context.Context, orgID id.OrganizationID, status models.VerificationStatus, actor string) (*models.Organization, error)
}

// Events lists an organization's open events for its public page.
type Events interface {
	ListOpenForOrganization(ctx context.Context, orgID id.OrganizationID) ([]*eventmodels.Event, error)
}

type Handler struct {
	service Service
	events  Events
	logger  *slog.Logger
}

func New(service Service, events Events, logger *slog.Logger) *Handler {
	return &Handler{service: service, events: events, logger: logger}
}

// Register mounts the public NGO directory.
func (h *Handler) Register(r chi.Router) {
	r.Get("/organizations", h.HandleList)
	r.Get("/organizations/{id}", h.HandleGet)
}

// RegisterAdmin mounts operator routes. The caller guards them with the
// admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Patch("/admin/organizations/{id}/verification", h.HandleSetVerification)
}

// HandleList handles GET /organizations.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgs, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list organizations failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]OrganizationResponse, len(orgs))
	for i, org := range orgs {
		out[i] = FromOrganization(org)
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Organizations: out})
}

// HandleGet handles GET /organizations/{id} with the organization's open
// events, soonest first.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	org, err := h.service.Get(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.events.ListOpenForOrganization(ctx, orgID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list organization events failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", orgID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DetailResponse{
		OrganizationResponse: FromOrganization(org),
		Events:               events,
	})
}

// HandleSetVerification handles PATCH /admin/organizations/{id}/verification.
func (h *Handler) HandleSetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req VerificationRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := models.ParseVerificationStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	org, err := h.service.SetVerification(ctx, orgID, status, "admin-api")
	if err != nil {
		h.logger.ErrorContext(ctx, "set verification failed",
			"request_id", requestID,
			"organization_id", orgID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}
