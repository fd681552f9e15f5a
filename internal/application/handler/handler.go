package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"voluntr/internal/accesscontrol"
	"voluntr/internal/application/models"
	"voluntr/internal/application/service"
	identitymodels "voluntr/internal/identity/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	"voluntr/pkg/platform/httputil"
	"voluntr/pkg/requestcontext"
)

// Service is the lifecycle surface the handler drives.
type Service interface {
	Apply(ctx context.Context, volunteer *identitymodels.Account, eventID id.EventID) (*models.Application, error)
	Cancel(ctx context.Context, volunteer *identitymodels.Account, appID id.ApplicationID) error
	Decide(ctx context.Context, admin *identitymodels.Account, eventID id.EventID, appID id.ApplicationID, rawStatus string) (*models.Application, error)
	ListForEvent(ctx context.Context, admin *identitymodels.Account, eventID id.EventID) ([]service.EventApplication, error)
	ListForVolunteer(ctx context.Context, volunteer *identitymodels.Account) ([]service.VolunteerApplication, error)
	MyApplication(ctx context.Context, volunteer *identitymodels.Account, eventID id.EventID) (*models.Application, error)
	ApprovedApplicants(ctx context.Context, admin *identitymodels.Account, eventID id.EventID) ([]service.EventApplication, error)
}

type Guard interface {
	RequirePermission(ctx context.Context, obj accesscontrol.Object, act accesscontrol.Action) (*identitymodels.Account, error)
}

// Handler wires application endpoints to the lifecycle service.
type Handler struct {
	service Service
	guard   Guard
	logger  *slog.Logger
}

func New(service Service, guard Guard, logger *slog.Logger) *Handler {
	return &Handler{service: service, guard: guard, logger: logger}
}

// Register mounts application endpoints. All of them require a session.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{id}/apply", h.HandleApply)
	r.Get("/events/{id}/application", h.HandleMyApplication)
	r.Get("/events/{id}/applications", h.HandleListForEvent)
	r.Patch("/events/{id}/applications/{appId}", h.HandleDecide)
	r.Get("/events/{id}/export", h.HandleExport)
	r.Get("/applications/mine", h.HandleListMine)
	r.Get("/dashboard/volunteer", h.HandleListMine)
	r.Delete("/applications/{id}", h.HandleCancel)
}

// HandleApply handles POST /events/{id}/apply.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	volunteer, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActApply)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Apply(ctx, volunteer, eventID)
	if err != nil {
		h.logFailure(ctx, "apply failed", err, "event_id", eventID, "account_id", volunteer.ID)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestID,
		"application_id", app.ID,
		"event_id", eventID,
	)
	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleCancel handles DELETE /applications/{id}.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	volunteer, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActCancel)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Cancel(ctx, volunteer, appID); err != nil {
		h.logFailure(ctx, "cancel failed", err, "application_id", appID, "account_id", volunteer.ID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDecide handles PATCH /events/{id}/applications/{appId}.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActDecide)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "appId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req DecideRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid decide request", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Decide(ctx, admin, eventID, appID, req.Status)
	if err != nil {
		h.logFailure(ctx, "decide failed", err, "event_id", eventID, "application_id", appID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleListForEvent handles GET /events/{id}/applications.
func (h *Handler) HandleListForEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActListEvent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	apps, err := h.service.ListForEvent(ctx, admin, eventID)
	if err != nil {
		h.logFailure(ctx, "list event applications failed", err, "event_id", eventID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse[service.EventApplication]{Applications: apps})
}

// HandleListMine handles GET /applications/mine.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	volunteer, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActListOwn)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	apps, err := h.service.ListForVolunteer(ctx, volunteer)
	if err != nil {
		h.logFailure(ctx, "list volunteer applications failed", err, "account_id", volunteer.ID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse[service.VolunteerApplication]{Applications: apps})
}

// HandleMyApplication handles GET /events/{id}/application. The body is
// {"application": null} when the caller has not applied.
func (h *Handler) HandleMyApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	volunteer, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActViewOwn)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.MyApplication(ctx, volunteer, eventID)
	if err != nil {
		h.logFailure(ctx, "load own application failed", err, "event_id", eventID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MyApplicationResponse{Application: app})
}

// HandleExport handles GET /events/{id}/export as text/csv.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.guard.RequirePermission(ctx, accesscontrol.ObjApplication, accesscontrol.ActExport)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows, err := h.service.ApprovedApplicants(ctx, admin, eventID)
	if err != nil {
		h.logFailure(ctx, "export failed", err, "event_id", eventID)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="volunteers-%s.csv"`, eventID))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, row := range rows {
		_ = cw.Write([]string{
			row.Applicant.Name(),
			row.Applicant.Email,
			row.Applicant.Phone,
			row.Applicant.Location,
			row.AppliedAt.UTC().Format(time.DateOnly),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.ErrorContext(ctx, "export write failed", "request_id", requestcontext.RequestID(ctx), "error", err)
	}
}

var exportHeader = []string{"Name", "Email", "Phone", "Location", "Applied At"}

// logFailure logs internal failures at error level and client errors at warn.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if code, ok := dErrors.CodeOf(err); ok && code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	h.logger.ErrorContext(ctx, msg, attrs...)
}
