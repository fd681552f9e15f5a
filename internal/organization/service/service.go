package service

import (
	"context"
	"errors"
	"log/slog"

	"voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
	"voluntr/pkg/requestcontext"
)

type Store interface {
	CreateIfAvailable(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error)
	FindByAdmin(ctx context.Context, admin id.AccountID) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	ListByIDs(ctx context.Context, ids []id.OrganizationID) (map[id.OrganizationID]*models.Organization, error)
	Execute(ctx context.Context, orgID id.OrganizationID, validate func(*models.Organization) error, mutate func(*models.Organization)) (*models.Organization, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages NGO profiles and their out-of-band verification.
type Service struct {
	orgs           Store
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

func New(orgs Store, opts ...Option) *Service {
	s := &Service{orgs: orgs, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = txcontext.NewMemoryRunner()
	}
	return s
}

// Register creates the admin's organization, or overwrites its profile when
// the admin already has one. Callers run it inside their own transaction.
func (s *Service) Register(ctx context.Context, admin id.AccountID, profile models.Profile) (*models.Organization, error) {
	now := requestcontext.Now(ctx)

	existing, err := s.orgs.FindByAdmin(ctx, admin)
	switch {
	case err == nil:
		if err := existing.UpdateProfile(profile, now); err != nil {
			return nil, toValidation(err)
		}
		if err := s.orgs.Update(ctx, existing); err != nil {
			return nil, wrapStoreErr(err, "failed to update organization")
		}
		return existing, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}

	org, err := models.NewOrganization(id.NewOrganizationID(), admin, profile, now)
	if err != nil {
		return nil, toValidation(err)
	}
	if err := s.orgs.CreateIfAvailable(ctx, org); err != nil {
		return nil, wrapStoreErr(err, "failed to create organization")
	}
	if err := s.emit(ctx, audit.Event{
		Action:    audit.ActionOrganizationRegistered,
		AccountID: admin,
		Subject:   org.ID.String(),
	}); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) Get(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load organization")
	}
	return org, nil
}

// ForAdmin resolves the organization owned by admin.
func (s *Service) ForAdmin(ctx context.Context, admin id.AccountID) (*models.Organization, error) {
	org, err := s.orgs.FindByAdmin(ctx, admin)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load organization")
	}
	return org, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

// VerifiedIDs lists the organizations currently marked verified.
func (s *Service) VerifiedIDs(ctx context.Context) ([]id.OrganizationID, error) {
	orgs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []id.OrganizationID{}
	for _, org := range orgs {
		if org.IsVerified() {
			out = append(out, org.ID)
		}
	}
	return out, nil
}

// Summaries loads display summaries for ids; missing ids are skipped.
func (s *Service) Summaries(ctx context.Context, ids []id.OrganizationID) (map[id.OrganizationID]models.Summary, error) {
	orgs, err := s.orgs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organizations")
	}
	out := make(map[id.OrganizationID]models.Summary, len(orgs))
	for orgID, org := range orgs {
		out[orgID] = org.Summary()
	}
	return out, nil
}

// SetVerification is the operator action that changes verification status.
func (s *Service) SetVerification(ctx context.Context, orgID id.OrganizationID, status models.VerificationStatus, actor string) (*models.Organization, error) {
	var updated *models.Organization
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		org, err := s.orgs.Execute(txCtx, orgID,
			func(o *models.Organization) error { return o.CanSetVerification(status) },
			func(o *models.Organization) { o.ApplyVerification(status, requestcontext.Now(txCtx)) },
		)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeInvalidState, dErrors.Message(err))
			}
			return wrapStoreErr(err, "failed to update verification")
		}
		updated = org
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionOrganizationVerificationChanged,
			AccountID: org.AdminAccountID,
			Subject:   org.ID.String(),
			Decision:  string(status),
			ActorID:   actor,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "organization verification changed",
		"organization_id", orgID,
		"status", status,
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
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

func toValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
	}
	return err
}

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "organization not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "organization name is already registered")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
