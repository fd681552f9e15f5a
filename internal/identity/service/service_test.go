package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"voluntr/internal/auth/revocation"
	"voluntr/internal/auth/token"
	"voluntr/internal/identity/models"
	"voluntr/internal/identity/store"
	orgmodels "voluntr/internal/organization/models"
	orgservice "voluntr/internal/organization/service"
	orgstore "voluntr/internal/organization/store"
	id "voluntr/pkg/domain"
	dErrors "voluntr/pkg/domain-errors"
	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/platform/audit/publisher"
	auditmemory "voluntr/pkg/platform/audit/store/memory"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	accounts *store.InMemory
	orgs     *orgservice.Service
	trl      *revocation.InMemoryTRL
	jwt      *token.JWTService
	audits   *auditmemory.InMemoryStore
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemory()
	s.audits = auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(s.audits)
	s.orgs = orgservice.New(orgstore.NewInMemory(), orgservice.WithAuditPublisher(pub))
	s.trl = revocation.NewInMemoryTRL()
	s.jwt = token.NewJWTService("test-signing-key", "voluntr-test")
	s.service = New(s.accounts, s.orgs, s.jwt, s.trl,
		WithAuditPublisher(pub),
		WithSessionTTL(time.Hour),
	)
}

func (s *ServiceSuite) login(email string) *models.Account {
	a, err := s.service.ResolveOrCreateAccount(s.ctx, models.ExternalIdentity{Email: email, DisplayName: "Tester"})
	s.Require().NoError(err)
	return a
}

func (s *ServiceSuite) TestResolveOrCreateAccount() {
	s.Run("first login creates an account without role", func() {
		a := s.login("Asha@Example.org")
		s.Equal("asha@example.org", a.Email)
		s.Empty(a.Role)
		s.False(a.ProfileComplete)

		events, _ := s.audits.ListByAction(s.ctx, audit.ActionAccountCreated)
		s.Len(events, 1)
	})

	s.Run("later logins resolve the same account", func() {
		first, err := s.accounts.FindByEmail(s.ctx, "asha@example.org")
		s.Require().NoError(err)
		again := s.login("asha@example.org")
		s.Equal(first.ID, again.ID)

		events, _ := s.audits.ListByAction(s.ctx, audit.ActionAccountCreated)
		s.Len(events, 1)
	})

	s.Run("identity without email is refused", func() {
		_, err := s.service.ResolveOrCreateAccount(s.ctx, models.ExternalIdentity{DisplayName: "Ghost"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestConcurrentFirstLogins() {
	const workers = 12
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[id.AccountID]struct{}{}
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.service.ResolveOrCreateAccount(s.ctx, models.ExternalIdentity{Email: "same@example.org"})
			s.NoError(err)
			if a != nil {
				mu.Lock()
				ids[a.ID] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Len(ids, 1, "every caller resolves the one surviving account")
}

func (s *ServiceSuite) TestLoginAndLogout() {
	session, err := s.service.Login(s.ctx, models.ExternalIdentity{Email: "v@example.org"})
	s.Require().NoError(err)
	s.NotEmpty(session.Token)

	claims, err := s.jwt.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Account.ID.String(), claims.AccountID)

	s.Require().NoError(s.service.Logout(s.ctx, claims.ID))
	revoked, err := s.trl.IsRevoked(s.ctx, claims.ID)
	s.Require().NoError(err)
	s.True(revoked)

	s.True(dErrors.HasCode(s.service.Logout(s.ctx, ""), dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestVolunteerOnboarding() {
	a := s.login("vol@example.org")

	updated, err := s.service.CompleteVolunteerOnboarding(s.ctx, a.ID, models.VolunteerProfile{
		LegalName: "Vol One",
		Location:  "Pune",
		Skills:    []string{"First Aid"},
	})
	s.Require().NoError(err)
	s.Equal(models.RoleVolunteer, updated.Role)
	s.True(updated.ProfileComplete)

	s.Run("repeat overwrites fields", func() {
		again, err := s.service.CompleteVolunteerOnboarding(s.ctx, a.ID, models.VolunteerProfile{Location: "Mumbai"})
		s.Require().NoError(err)
		s.Equal("Mumbai", again.Location)
		s.Equal(models.RoleVolunteer, again.Role)
	})

	s.Run("switching to ngo_admin is an invalid state", func() {
		_, _, err := s.service.CompleteNGOOnboarding(s.ctx, a.ID, orgmodels.Profile{Name: "Switcheroo"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		_, err = s.orgs.ForAdmin(s.ctx, a.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "no organization is left behind")
	})

	events, _ := s.audits.ListByAction(s.ctx, audit.ActionOnboardingCompleted)
	s.Len(events, 2)
}

func (s *ServiceSuite) TestNGOOnboarding() {
	a := s.login("ngo@example.org")

	updated, org, err := s.service.CompleteNGOOnboarding(s.ctx, a.ID, orgmodels.Profile{Name: "River Keepers", TaxID: "AAACR1234A"})
	s.Require().NoError(err)
	s.Equal(models.RoleNGOAdmin, updated.Role)
	s.Equal(models.RouteNGODashboard, updated.NextRoute())
	s.Equal(orgmodels.VerificationPending, org.VerificationStatus)
	s.Equal(a.ID, org.AdminAccountID)

	s.Run("taken organization name leaves the account without role", func() {
		other := s.login("other@example.org")
		_, _, err := s.service.CompleteNGOOnboarding(s.ctx, other.ID, orgmodels.Profile{Name: "river keepers"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		reloaded, err := s.service.Get(s.ctx, other.ID)
		s.Require().NoError(err)
		s.Empty(reloaded.Role)
	})

	s.Run("unknown account", func() {
		_, _, err := s.service.CompleteNGOOnboarding(s.ctx, id.NewAccountID(), orgmodels.Profile{Name: "Nobody"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestApplicants() {
	a := s.login("app@example.org")
	_, err := s.service.CompleteVolunteerOnboarding(s.ctx, a.ID, models.VolunteerProfile{LegalName: "App Licant", Phone: "+91 98"})
	s.Require().NoError(err)

	applicants, err := s.service.Applicants(s.ctx, []id.AccountID{a.ID, id.NewAccountID()})
	s.Require().NoError(err)
	s.Len(applicants, 1)
	s.Equal("App Licant", applicants[a.ID].Name())
	s.Equal("+91 98", applicants[a.ID].Phone)
}
