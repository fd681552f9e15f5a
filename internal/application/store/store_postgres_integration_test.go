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

	"voluntr/internal/application/models"
	"voluntr/internal/application/store"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
	"voluntr/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	org      id.OrganizationID
	event    id.EventID
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

	s.org = id.NewOrganizationID()
	_, err := s.postgres.DB.Exec(`INSERT INTO organizations (id, admin_account_id, name, created_at, updated_at) VALUES ($1, $2, 'Org', now(), now())`,
		uuid.UUID(s.org), uuid.UUID(s.insertAccount()))
	s.Require().NoError(err)

	s.event = id.NewEventID()
	_, err = s.postgres.DB.Exec(`INSERT INTO events (id, organization_id, title, location, starts_at, required_volunteers, created_at, updated_at)
		VALUES ($1, $2, 'Cleanup', 'Goa', now(), 3, now(), now())`, uuid.UUID(s.event), uuid.UUID(s.org))
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) insertAccount() id.AccountID {
	accountID := id.NewAccountID()
	_, err := s.postgres.DB.Exec(`INSERT INTO accounts (id, email, created_at, updated_at) VALUES ($1, $2, now(), now())`,
		uuid.UUID(accountID), uuid.NewString()+"@example.org")
	s.Require().NoError(err)
	return accountID
}

func (s *PostgresStoreSuite) newApp(accountID id.AccountID, at time.Time) *models.Application {
	return models.NewApplication(id.NewApplicationID(), s.event, s.org, accountID, at.UTC().Truncate(time.Microsecond))
}

func (s *PostgresStoreSuite) TestCreateFindAndUniqueness() {
	ctx := context.Background()
	volunteer := s.insertAccount()
	app := s.newApp(volunteer, time.Now())
	s.Require().NoError(s.store.Create(ctx, app))

	found, err := s.store.FindByEventAndAccount(ctx, s.event, volunteer)
	s.Require().NoError(err)
	s.Equal(app.ID, found.ID)
	s.Equal(models.StatusPending, found.Status)
	s.Nil(found.DecidedAt)

	s.ErrorIs(s.store.Create(ctx, s.newApp(volunteer, time.Now())), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestConcurrentApplyKeepsOne() {
	ctx := context.Background()
	volunteer := s.insertAccount()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.store.Create(ctx, s.newApp(volunteer, time.Now())) == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), created.Load())
}

func (s *PostgresStoreSuite) TestDeletePendingAndDecisions() {
	ctx := context.Background()
	pending := s.newApp(s.insertAccount(), time.Now())
	decided := s.newApp(s.insertAccount(), time.Now())
	s.Require().NoError(s.store.Create(ctx, pending))
	s.Require().NoError(s.store.Create(ctx, decided))
	s.Require().NoError(s.store.UpdateStatus(ctx, decided.ID, models.StatusApproved, time.Now()))

	n, err := s.store.CountPendingByOrganization(ctx, s.org)
	s.Require().NoError(err)
	s.Equal(1, n)

	s.ErrorIs(s.store.DeletePending(ctx, decided.ID), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.DeletePending(ctx, id.NewApplicationID()), sentinel.ErrNotFound)
	s.Require().NoError(s.store.DeletePending(ctx, pending.ID))

	list, err := s.store.ListByEvent(ctx, s.event)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(models.StatusApproved, list[0].Status)
	s.NotNil(list[0].DecidedAt)
}
