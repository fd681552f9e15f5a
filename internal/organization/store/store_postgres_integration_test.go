//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"voluntr/internal/organization/models"
	"voluntr/internal/organization/store"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
	"voluntr/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "applications", "event_attendees", "events", "organizations", "accounts"))
}

// insertAdmin creates the account row organizations reference.
func (s *PostgresStoreSuite) insertAdmin() id.AccountID {
	accountID := id.NewAccountID()
	_, err := s.postgres.DB.Exec(`INSERT INTO accounts (id, email, role, created_at, updated_at) VALUES ($1, $2, 'ngo_admin', now(), now())`,
		uuid.UUID(accountID), uuid.NewString()+"@example.org")
	s.Require().NoError(err)
	return accountID
}

func (s *PostgresStoreSuite) newOrg(name string) *models.Organization {
	org, err := models.NewOrganization(id.NewOrganizationID(), s.insertAdmin(), models.Profile{
		Name:        name,
		GalleryURLs: []string{"https://cdn.example.org/a.png"},
	}, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return org
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	org := s.newOrg("Harbor Helpers")
	s.Require().NoError(s.store.CreateIfAvailable(ctx, org))

	found, err := s.store.FindByAdmin(ctx, org.AdminAccountID)
	s.Require().NoError(err)
	s.Equal(org.ID, found.ID)
	s.Equal(models.VerificationPending, found.VerificationStatus)
	s.Equal([]string{"https://cdn.example.org/a.png"}, found.GalleryURLs)
}

func (s *PostgresStoreSuite) TestConcurrentUniqueNameViolation() {
	ctx := context.Background()
	const goroutines = 20
	orgs := make([]*models.Organization, goroutines)
	for i := range orgs {
		orgs[i] = s.newOrg("Same Name")
	}

	var wg sync.WaitGroup
	var success, conflict atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(org *models.Organization) {
			defer wg.Done()
			err := s.store.CreateIfAvailable(ctx, org)
			switch {
			case err == nil:
				success.Add(1)
			case err == sentinel.ErrAlreadyUsed:
				conflict.Add(1)
			}
		}(orgs[i])
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}

func (s *PostgresStoreSuite) TestExecuteVerification() {
	ctx := context.Background()
	org := s.newOrg("Verify Me")
	s.Require().NoError(s.store.CreateIfAvailable(ctx, org))

	updated, err := s.store.Execute(ctx, org.ID,
		func(o *models.Organization) error { return o.CanSetVerification(models.VerificationVerified) },
		func(o *models.Organization) { o.ApplyVerification(models.VerificationVerified, time.Now()) },
	)
	s.Require().NoError(err)
	s.True(updated.IsVerified())

	found, err := s.store.FindByID(ctx, org.ID)
	s.Require().NoError(err)
	s.True(found.IsVerified())
}
