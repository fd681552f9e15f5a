package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"voluntr/internal/event/models"
	orgmodels "voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
	"voluntr/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	ListByOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.Event, error)
	ListDiscoverable(ctx context.Context, f models.Filter) ([]*models.Event, error)
}

// Organizations resolves the owning side of events.
type Organizations interface {
	ForAdmin(ctx context.Context, admin id.AccountID) (*orgmodels.Organization, error)
	Summaries(ctx context.Context, ids []id.OrganizationID) (map[id.OrganizationID]orgmodels.Summary, error)
	VerifiedIDs(ctx context.Context) ([]id.OrganizationID, error)
}

// PendingCounter counts undecided applications across an organization's events.
type PendingCounter interface {
	CountPendingByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Metrics interface {
	IncEventCreated()
}

// View is an event with its organization summary and capacity figure.
type View struct {
	*models.Event
	Organization      orgmodels.Summary `json:"organization"`
	RemainingCapacity int               `json:"remaining_capacity"`
}

// Stats feeds the NGO dashboard.
type Stats struct {
	EventCount          int `json:"event_count"`
	TotalAttendees      int `json:"total_attendees"`
	PendingApplications int `json:"pending_applications"`
}

// Service is the event catalog.
type Service struct {
	events          Store
	orgs            Organizations
	pending         PendingCounter
	tx              txcontext.Runner
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	metrics         Metrics
	requireVerified bool
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

func WithPendingCounter(c PendingCounter) Option {
	return func(s *Service) { s.pending = c }
}

// WithDiscoverRequireVerified hides events of unverified organizations from
// the discover listing.
func WithDiscoverRequireVerified(required bool) Option {
	return func(s *Service) { s.requireVerified = required }
}

func New(events Store, orgs Organizations, opts ...Option) *Service {
	s := &Service{events: events, orgs: orgs, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = txcontext.NewMemoryRunner()
	}
	return s
}

// CreateEvent publishes a new open event under the admin's organization.
// An admin without an organization gets ProfileIncomplete.
func (s *Service) CreateEvent(ctx context.Context, admin id.AccountID, draft models.Draft) (*models.Event, error) {
	org, err := s.orgs.ForAdmin(ctx, admin)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeProfileIncomplete, "organization profile is not set up")
		}
		return nil, err
	}

	e, err := models.NewEvent(id.NewEventID(), org.ID, draft, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, e); err != nil {
			return wrapStoreErr(err, "failed to create event")
		}
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionEventCreated,
			AccountID: admin,
			Subject:   e.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncEventCreated()
	}
	s.logger.InfoContext(ctx, "event created",
		"event_id", e.ID,
		"organization_id", org.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return e, nil
}

// ListForOrganization returns the admin's events newest first, or an empty
// list when the admin has no organization yet.
func (s *Service) ListForOrganization(ctx context.Context, admin id.AccountID) ([]*models.Event, error) {
	org, err := s.orgs.ForAdmin(ctx, admin)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return []*models.Event{}, nil
		}
		return nil, err
	}
	events, err := s.events.ListByOrganization(ctx, org.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// ListOpenForOrganization returns an organization's open events soonest first.
func (s *Service) ListOpenForOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.Event, error) {
	events, err := s.events.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	open := make([]*models.Event, 0, len(events))
	for _, e := range events {
		if e.IsOpen() {
			open = append(open, e)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Date.Before(open[j].Date) })
	return open, nil
}

// ListDiscoverable is the public listing. Text matches location or title,
// cause matches category or cause tags.
func (s *Service) ListDiscoverable(ctx context.Context, text, cause string) ([]View, error) {
	filter := models.Filter{Text: text, Cause: cause}
	if s.requireVerified {
		verified, err := s.orgs.VerifiedIDs(ctx)
		if err != nil {
			return nil, err
		}
		filter.OrganizationIDs = verified
	}
	events, err := s.events.ListDiscoverable(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return s.views(ctx, events)
}

// Get returns the public event detail.
func (s *Service) Get(ctx context.Context, eventID id.EventID) (*View, error) {
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load event")
	}
	views, err := s.views(ctx, []*models.Event{e})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Stats aggregates the admin's dashboard figures. An admin without an
// organization gets zeros.
func (s *Service) Stats(ctx context.Context, admin id.AccountID) (Stats, error) {
	org, err := s.orgs.ForAdmin(ctx, admin)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Stats{}, nil
		}
		return Stats{}, err
	}
	events, err := s.events.ListByOrganization(ctx, org.ID)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	stats := Stats{EventCount: len(events)}
	for _, e := range events {
		stats.TotalAttendees += len(e.Attendees)
	}
	if s.pending != nil {
		n, err := s.pending.CountPendingByOrganization(ctx, org.ID)
		if err != nil {
			return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count applications")
		}
		stats.PendingApplications = n
	}
	return stats, nil
}

func (s *Service) views(ctx context.Context, events []*models.Event) ([]View, error) {
	orgIDs := make([]id.OrganizationID, 0, len(events))
	seen := make(map[id.OrganizationID]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.OrganizationID]; !ok {
			seen[e.OrganizationID] = struct{}{}
			orgIDs = append(orgIDs, e.OrganizationID)
		}
	}
	summaries, err := s.orgs.Summaries(ctx, orgIDs)
	if err != nil {
		return nil, err
	}
	out := make([]View, len(events))
	for i, e := range events {
		out[i] = View{
			Event:             e,
			Organization:      summaries[e.OrganizationID],
			RemainingCapacity: e.RemainingCapacity(),
		}
	}
	return out, nil
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

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
