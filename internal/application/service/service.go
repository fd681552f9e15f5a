package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"voluntr/internal/accesscontrol"
	"voluntr/internal/application/models"
	eventmodels "voluntr/internal/event/models"
	identitymodels "voluntr/internal/identity/models"
	orgmodels "voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
	"voluntr/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindByEventAndAccount(ctx context.Context, eventID id.EventID, accountID id.AccountID) (*models.Application, error)
	DeletePending(ctx context.Context, appID id.ApplicationID) error
	UpdateStatus(ctx context.Context, appID id.ApplicationID, status models.Status, decidedAt time.Time) error
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Application, error)
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Application, error)
}

// Events is the slice of the event catalog the lifecycle touches. Attendee
// changes happen only here, as side effects of decisions.
type Events interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
	ListByIDs(ctx context.Context, ids []id.EventID) (map[id.EventID]*eventmodels.Event, error)
	AddAttendee(ctx context.Context, eventID id.EventID, accountID id.AccountID, limit int) error
	RemoveAttendee(ctx context.Context, eventID id.EventID, accountID id.AccountID) error
}

type Applicants interface {
	Applicants(ctx context.Context, ids []id.AccountID) (map[id.AccountID]identitymodels.Applicant, error)
}

type Organizations interface {
	Summaries(ctx context.Context, ids []id.OrganizationID) (map[id.OrganizationID]orgmodels.Summary, error)
}

// Guard checks ownership of events and applications.
type Guard interface {
	RequireOrganizationOwner(ctx context.Context, admin *identitymodels.Account, resource accesscontrol.OrganizationOwned) (*orgmodels.Organization, error)
	RequireApplicant(account *identitymodels.Account, resource accesscontrol.ApplicantOwned) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Metrics interface {
	IncApplicationCreated()
	IncApplicationDecided(status string)
	IncApplicationCancelled()
	IncApplyConflict()
}

// EventApplication is an application joined with its applicant.
type EventApplication struct {
	*models.Application
	Applicant identitymodels.Applicant `json:"applicant"`
}

// VolunteerApplication is an application joined with its event and organization.
type VolunteerApplication struct {
	*models.Application
	Event        *EventSummary     `json:"event,omitempty"`
	Organization orgmodels.Summary `json:"organization"`
}

type EventSummary struct {
	ID       id.EventID         `json:"id"`
	Title    string             `json:"title"`
	Location string             `json:"location"`
	Date     time.Time          `json:"date"`
	Status   eventmodels.Status `json:"status"`
	ImageURL string             `json:"image_url,omitempty"`
}

// Service is the application lifecycle engine.
type Service struct {
	apps           Store
	events         Events
	applicants     Applicants
	orgs           Organizations
	guard          Guard
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        Metrics
	tracer         trace.Tracer
	strictCapacity bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithTx(tx txcontext.Runner) Option {
	return func(s *Service) { s.tx = tx }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithStrictCapacity makes approvals fail with Conflict once an event's
// attendee set holds RequiredVolunteers members.
func WithStrictCapacity(strict bool) Option {
	return func(s *Service) { s.strictCapacity = strict }
}

func New(apps Store, events Events, applicants Applicants, orgs Organizations, guard Guard, opts ...Option) *Service {
	s := &Service{
		apps:       apps,
		events:     events,
		applicants: applicants,
		orgs:       orgs,
		guard:      guard,
		logger:     slog.Default(),
		tracer:     otel.Tracer("voluntr/application"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = txcontext.NewMemoryRunner()
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "application."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Apply creates a pending application for an open event. A second
// application for the same pair is a Conflict regardless of the first
// one's status.
func (s *Service) Apply(ctx context.Context, volunteer *identitymodels.Account, eventID id.EventID) (_ *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "apply",
		attribute.String("event_id", eventID.String()),
		attribute.String("account_id", volunteer.ID.String()),
	)
	defer func() { endSpan(span, err) }()

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	if !event.IsOpen() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "event is not open for applications")
	}

	app := models.NewApplication(id.NewApplicationID(), event.ID, event.OrganizationID, volunteer.ID, requestcontext.Now(ctx))
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.apps.Create(txCtx, app); err != nil {
			return err
		}
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionApplicationSubmitted,
			AccountID: volunteer.ID,
			Subject:   app.ID.String(),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			if s.metrics != nil {
				s.metrics.IncApplyConflict()
			}
			return nil, dErrors.New(dErrors.CodeConflict, "already applied to this event")
		}
		return nil, wrapAppErr(err, "failed to create application")
	}

	if s.metrics != nil {
		s.metrics.IncApplicationCreated()
	}
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"event_id", eventID,
		"account_id", volunteer.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return app, nil
}

// Cancel deletes the volunteer's pending application. Ownership is checked
// before status.
func (s *Service) Cancel(ctx context.Context, volunteer *identitymodels.Account, appID id.ApplicationID) (err error) {
	ctx, span := s.startSpan(ctx, "cancel", attribute.String("application_id", appID.String()))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.FindByID(txCtx, appID)
		if err != nil {
			return wrapAppErr(err, "failed to load application")
		}
		if err := s.guard.RequireApplicant(volunteer, app); err != nil {
			return err
		}
		if err := app.CanCancel(); err != nil {
			return dErrors.New(dErrors.CodeInvalidState, dErrors.Message(err))
		}
		if err := s.apps.DeletePending(txCtx, appID); err != nil {
			return wrapAppErr(err, "failed to cancel application")
		}
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionApplicationCancelled,
			AccountID: volunteer.ID,
			Subject:   appID.String(),
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncApplicationCancelled()
	}
	s.logger.InfoContext(ctx, "application cancelled",
		"application_id", appID,
		"account_id", volunteer.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Decide sets an application's status and applies the attendee side effect
// in the same transaction: approved adds the applicant, rejected removes
// them. The event is re-derived from the application, never trusted from
// the caller.
func (s *Service) Decide(ctx context.Context, admin *identitymodels.Account, eventID id.EventID, appID id.ApplicationID, rawStatus string) (_ *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "decide",
		attribute.String("event_id", eventID.String()),
		attribute.String("application_id", appID.String()),
		attribute.String("status", rawStatus),
	)
	defer func() { endSpan(span, err) }()

	status, err := models.ParseDecision(rawStatus)
	if err != nil {
		return nil, err
	}

	var decided *models.Application
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.FindByID(txCtx, appID)
		if err != nil {
			return wrapAppErr(err, "failed to load application")
		}
		if app.EventID != eventID {
			return dErrors.New(dErrors.CodeNotFound, "application not found for this event")
		}
		event, err := s.events.FindByID(txCtx, app.EventID)
		if err != nil {
			return wrapEventErr(err)
		}
		if _, err := s.guard.RequireOrganizationOwner(txCtx, admin, event); err != nil {
			return err
		}

		switch status {
		case models.StatusApproved:
			limit := 0
			if s.strictCapacity {
				limit = event.RequiredVolunteers
			}
			if err := s.events.AddAttendee(txCtx, event.ID, app.AccountID, limit); err != nil {
				if errors.Is(err, sentinel.ErrCapacityReached) {
					return dErrors.New(dErrors.CodeConflict, "event has reached its volunteer capacity")
				}
				return wrapEventErr(err)
			}
		case models.StatusRejected:
			if err := s.events.RemoveAttendee(txCtx, event.ID, app.AccountID); err != nil {
				return wrapEventErr(err)
			}
		}

		now := requestcontext.Now(txCtx)
		if err := s.apps.UpdateStatus(txCtx, app.ID, status, now); err != nil {
			return wrapAppErr(err, "failed to update application")
		}
		app.Decide(status, now)
		decided = app

		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionApplicationDecided,
			AccountID: app.AccountID,
			Subject:   app.ID.String(),
			Decision:  string(status),
			ActorID:   admin.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncApplicationDecided(string(status))
	}
	s.logger.InfoContext(ctx, "application decided",
		"application_id", appID,
		"event_id", eventID,
		"status", status,
		"actor_id", admin.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return decided, nil
}

// ListForEvent returns the owner's view of an event's applications with
// applicant details, most recently applied first.
func (s *Service) ListForEvent(ctx context.Context, admin *identitymodels.Account, eventID id.EventID) ([]EventApplication, error) {
	if err := s.requireEventOwner(ctx, admin, eventID); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, wrapAppErr(err, "failed to list applications")
	}

	ids := make([]id.AccountID, len(apps))
	for i, app := range apps {
		ids[i] = app.AccountID
	}
	applicants, err := s.applicants.Applicants(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]EventApplication, len(apps))
	for i, app := range apps {
		out[i] = EventApplication{Application: app, Applicant: applicants[app.AccountID]}
	}
	return out, nil
}

// ListForVolunteer returns the volunteer's applications across events with
// event and organization summaries, most recently applied first.
func (s *Service) ListForVolunteer(ctx context.Context, volunteer *identitymodels.Account) ([]VolunteerApplication, error) {
	apps, err := s.apps.ListByAccount(ctx, volunteer.ID)
	if err != nil {
		return nil, wrapAppErr(err, "failed to list applications")
	}

	eventIDs := make([]id.EventID, len(apps))
	orgIDs := make([]id.OrganizationID, 0, len(apps))
	seenOrg := make(map[id.OrganizationID]struct{}, len(apps))
	for i, app := range apps {
		eventIDs[i] = app.EventID
		if _, ok := seenOrg[app.OrganizationID]; !ok {
			seenOrg[app.OrganizationID] = struct{}{}
			orgIDs = append(orgIDs, app.OrganizationID)
		}
	}

	var (
		events    map[id.EventID]*eventmodels.Event
		summaries map[id.OrganizationID]orgmodels.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.events.ListByIDs(gctx, eventIDs)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load events")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summaries, err = s.orgs.Summaries(gctx, orgIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]VolunteerApplication, len(apps))
	for i, app := range apps {
		va := VolunteerApplication{Application: app, Organization: summaries[app.OrganizationID]}
		if e, ok := events[app.EventID]; ok {
			va.Event = &EventSummary{
				ID:       e.ID,
				Title:    e.Title,
				Location: e.Location,
				Date:     e.Date,
				Status:   e.Status,
				ImageURL: e.ImageURL,
			}
		}
		out[i] = va
	}
	return out, nil
}

// MyApplication returns the volunteer's application for an event, or nil.
func (s *Service) MyApplication(ctx context.Context, volunteer *identitymodels.Account, eventID id.EventID) (*models.Application, error) {
	app, err := s.apps.FindByEventAndAccount(ctx, eventID, volunteer.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, wrapAppErr(err, "failed to load application")
	}
	return app, nil
}

// ApprovedApplicants returns the owner's export rows for approved applications.
func (s *Service) ApprovedApplicants(ctx context.Context, admin *identitymodels.Account, eventID id.EventID) ([]EventApplication, error) {
	all, err := s.ListForEvent(ctx, admin, eventID)
	if err != nil {
		return nil, err
	}
	approved := make([]EventApplication, 0, len(all))
	for _, ea := range all {
		if ea.Status == models.StatusApproved {
			approved = append(approved, ea)
		}
	}
	return approved, nil
}

func (s *Service) requireEventOwner(ctx context.Context, admin *identitymodels.Account, eventID id.EventID) error {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return wrapEventErr(err)
	}
	_, err = s.guard.RequireOrganizationOwner(ctx, admin, event)
	return err
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func wrapEventErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	case isCoded(err):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
}

func wrapAppErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "only pending applications can be cancelled")
	case isCoded(err):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func isCoded(err error) bool {
	_, ok := dErrors.CodeOf(err)
	return ok
}
