package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voluntr/internal/auth/token"
	"voluntr/internal/identity/models"
	orgmodels "voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/sentinel"
	txcontext "voluntr/pkg/platform/tx"
	"voluntr/pkg/requestcontext"
)

type Store interface {
	CreateIfAvailable(ctx context.Context, a *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	ListByIDs(ctx context.Context, ids []id.AccountID) (map[id.AccountID]*models.Account, error)
	Update(ctx context.Context, a *models.Account) error
	Execute(ctx context.Context, accountID id.AccountID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error)
}

// Organizations registers the NGO created during admin onboarding.
type Organizations interface {
	Register(ctx context.Context, admin id.AccountID, profile orgmodels.Profile) (*orgmodels.Organization, error)
}

type TokenIssuer interface {
	GenerateAccessToken(accountID id.AccountID, sessionID id.SessionID, expiresIn time.Duration) (token.Issued, error)
}

type Revoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Metrics interface {
	IncAccountCreated()
	IncOnboarding(role string)
}

// Session is the result of a successful login.
type Session struct {
	Token     string          `json:"access_token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"account"`
}

// Service resolves external identities to accounts and drives onboarding.
type Service struct {
	accounts       Store
	orgs           Organizations
	tokens         TokenIssuer
	revoker        Revoker
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        Metrics
	sessionTTL     time.Duration
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

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

func New(accounts Store, orgs Organizations, tokens TokenIssuer, revoker Revoker, opts ...Option) *Service {
	s := &Service{
		accounts:   accounts,
		orgs:       orgs,
		tokens:     tokens,
		revoker:    revoker,
		logger:     slog.Default(),
		sessionTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = txcontext.NewMemoryRunner()
	}
	return s
}

// ResolveOrCreateAccount finds the account joined by email, creating one
// without a role on first login. Identities without an email are refused.
func (s *Service) ResolveOrCreateAccount(ctx context.Context, ext models.ExternalIdentity) (*models.Account, error) {
	email := models.NormalizeEmail(ext.Email)
	if email == "" {
		s.logger.WarnContext(ctx, "login refused - identity has no email",
			"provider", ext.Provider,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "identity provider returned no email")
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		return s.refresh(ctx, existing, ext)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	account, err := models.NewAccount(id.NewAccountID(), ext, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accounts.CreateIfAvailable(txCtx, account); err != nil {
			return err
		}
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionAccountCreated,
			AccountID: account.ID,
			Subject:   account.ID.String(),
		})
	})
	if err != nil {
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, wrapStoreErr(err, "failed to create account")
		}
		// A concurrent first login for the same email won.
		winner, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}
		return winner, nil
	}

	if s.metrics != nil {
		s.metrics.IncAccountCreated()
	}
	s.logger.InfoContext(ctx, "account created",
		"account_id", account.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return account, nil
}

func (s *Service) refresh(ctx context.Context, a *models.Account, ext models.ExternalIdentity) (*models.Account, error) {
	if !a.RefreshIdentity(ext, requestcontext.Now(ctx)) {
		return a, nil
	}
	if err := s.accounts.Update(ctx, a); err != nil {
		return nil, wrapStoreErr(err, "failed to update account")
	}
	return a, nil
}

// Login resolves the identity and issues a session token for it.
func (s *Service) Login(ctx context.Context, ext models.ExternalIdentity) (*Session, error) {
	account, err := s.ResolveOrCreateAccount(ctx, ext)
	if err != nil {
		return nil, err
	}
	issued, err := s.tokens.GenerateAccessToken(account.ID, id.NewSessionID(), s.sessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	s.logger.InfoContext(ctx, "session started",
		"account_id", account.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Session{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Account: account}, nil
}

// Logout revokes the token's jti for at most one session lifetime.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "session has no token id")
	}
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, jti, s.sessionTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	return nil
}

// Get re-reads the account; sessions never trust cached role state.
func (s *Service) Get(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load account")
	}
	return a, nil
}

// Applicants loads contact details for ids; unknown ids are skipped.
func (s *Service) Applicants(ctx context.Context, ids []id.AccountID) (map[id.AccountID]models.Applicant, error) {
	accounts, err := s.accounts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicants")
	}
	out := make(map[id.AccountID]models.Applicant, len(accounts))
	for accountID, a := range accounts {
		out[accountID] = a.Applicant()
	}
	return out, nil
}

// CompleteVolunteerOnboarding fixes the volunteer role and stores the profile.
// Repeating it overwrites the profile; switching role fails with InvalidState.
func (s *Service) CompleteVolunteerOnboarding(ctx context.Context, accountID id.AccountID, profile models.VolunteerProfile) (*models.Account, error) {
	var updated *models.Account
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.accounts.Execute(txCtx, accountID,
			func(a *models.Account) error { return a.CanCompleteOnboarding(models.RoleVolunteer) },
			func(a *models.Account) { a.CompleteVolunteer(profile, requestcontext.Now(txCtx)) },
		)
		if err != nil {
			return translateGuard(err)
		}
		updated = a
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionOnboardingCompleted,
			AccountID: accountID,
			Subject:   accountID.String(),
			Decision:  string(models.RoleVolunteer),
		})
	})
	if err != nil {
		return nil, err
	}
	s.onboarded(ctx, updated)
	return updated, nil
}

// CompleteNGOOnboarding registers the admin's organization and fixes the
// ngo_admin role in one transaction.
func (s *Service) CompleteNGOOnboarding(ctx context.Context, accountID id.AccountID, profile orgmodels.Profile) (*models.Account, *orgmodels.Organization, error) {
	var (
		updated *models.Account
		org     *orgmodels.Organization
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.accounts.FindByID(txCtx, accountID)
		if err != nil {
			return wrapStoreErr(err, "failed to load account")
		}
		if err := current.CanCompleteOnboarding(models.RoleNGOAdmin); err != nil {
			return translateGuard(err)
		}

		org, err = s.orgs.Register(txCtx, accountID, profile)
		if err != nil {
			return err
		}

		updated, err = s.accounts.Execute(txCtx, accountID,
			func(a *models.Account) error { return a.CanCompleteOnboarding(models.RoleNGOAdmin) },
			func(a *models.Account) { a.CompleteNGOAdmin(requestcontext.Now(txCtx)) },
		)
		if err != nil {
			return translateGuard(err)
		}
		return s.emit(txCtx, audit.Event{
			Action:    audit.ActionOnboardingCompleted,
			AccountID: accountID,
			Subject:   org.ID.String(),
			Decision:  string(models.RoleNGOAdmin),
		})
	})
	if err != nil {
		return nil, nil, err
	}
	s.onboarded(ctx, updated)
	return updated, org, nil
}

func (s *Service) onboarded(ctx context.Context, a *models.Account) {
	if s.metrics != nil {
		s.metrics.IncOnboarding(string(a.Role))
	}
	s.logger.InfoContext(ctx, "onboarding completed",
		"account_id", a.ID,
		"role", a.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
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

func translateGuard(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeInvalidState, dErrors.Message(err))
	}
	return wrapStoreErr(err, "failed to complete onboarding")
}

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "account not found")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
