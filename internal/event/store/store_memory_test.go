package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"voluntr/internal/event/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
)

type EventStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	org   id.OrganizationID
}

func TestEventStoreSuite(t *testing.T) {
	suite.Run(t, new(EventStoreSuite))
}

func (s *EventStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.org = id.NewOrganizationID()
}

func (s *EventStoreSuite) create(orgID id.OrganizationID, title, location string, date time.Time, causes ...string) *models.Event {
	e, err := models.NewEvent(id.NewEventID(), orgID, models.Draft{
		Title:              title,
		Location:           location,
		Date:               date,
		RequiredVolunteers: 2,
		Causes:             causes,
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, e))
	return e
}

func (s *EventStoreSuite) TestFindByID() {
	e := s.create(s.org, "Tree Planting", "Pune", time.Now().Add(24*time.Hour))

	found, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal("Tree Planting", found.Title)

	found.Attendees = append(found.Attendees, id.NewAccountID())
	again, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Empty(again.Attendees, "returned copies are detached")

	_, err = s.store.FindByID(s.ctx, id.NewEventID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EventStoreSuite) TestListByOrganization() {
	first := s.create(s.org, "First", "Pune", time.Now())
	time.Sleep(time.Millisecond)
	second := s.create(s.org, "Second", "Pune", time.Now())
	s.create(id.NewOrganizationID(), "Other", "Pune", time.Now())

	events, err := s.store.ListByOrganization(s.ctx, s.org)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(second.ID, events[0].ID, "newest first")
	s.Equal(first.ID, events[1].ID)

	none, err := s.store.ListByOrganization(s.ctx, id.NewOrganizationID())
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *EventStoreSuite) TestListDiscoverable() {
	base := time.Now()
	later := s.create(s.org, "River Cleanup", "Mumbai", base.Add(48*time.Hour), "Water")
	sooner := s.create(s.org, "Food Drive", "Thane", base.Add(24*time.Hour), "Hunger")
	closed := s.create(s.org, "Closed Drive", "Mumbai", base)
	s.Require().NoError(s.store.SetStatus(s.ctx, closed.ID, models.StatusClosed))

	s.Run("open events soonest first", func() {
		events, err := s.store.ListDiscoverable(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(sooner.ID, events[0].ID)
		s.Equal(later.ID, events[1].ID)
	})

	s.Run("text matches location", func() {
		events, err := s.store.ListDiscoverable(s.ctx, models.Filter{Text: "mumbai"})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(later.ID, events[0].ID)
	})

	s.Run("cause matches tag", func() {
		events, err := s.store.ListDiscoverable(s.ctx, models.Filter{Cause: "hunger"})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(sooner.ID, events[0].ID)
	})

	s.Run("empty organization restriction yields nothing", func() {
		events, err := s.store.ListDiscoverable(s.ctx, models.Filter{OrganizationIDs: []id.OrganizationID{}})
		s.Require().NoError(err)
		s.Empty(events)
	})

	s.Run("organization restriction", func() {
		events, err := s.store.ListDiscoverable(s.ctx, models.Filter{OrganizationIDs: []id.OrganizationID{s.org}})
		s.Require().NoError(err)
		s.Len(events, 2)
	})
}

func (s *EventStoreSuite) TestAttendeeSet() {
	e := s.create(s.org, "Shelter Visit", "Nagpur", time.Now())
	v1, v2, v3 := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()

	s.Require().NoError(s.store.AddAttendee(s.ctx, e.ID, v1, 0))
	s.Require().NoError(s.store.AddAttendee(s.ctx, e.ID, v1, 0))
	s.Require().NoError(s.store.AddAttendee(s.ctx, e.ID, v2, 2))

	s.Run("strict limit rejects a newcomer", func() {
		err := s.store.AddAttendee(s.ctx, e.ID, v3, 2)
		s.ErrorIs(err, sentinel.ErrCapacityReached)
	})

	s.Run("strict limit admits an existing attendee", func() {
		s.NoError(s.store.AddAttendee(s.ctx, e.ID, v2, 2))
	})

	s.Run("advisory limit admits beyond capacity", func() {
		s.NoError(s.store.AddAttendee(s.ctx, e.ID, v3, 0))
	})

	found, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]id.AccountID{v1, v2, v3}, found.Attendees)

	s.Require().NoError(s.store.RemoveAttendee(s.ctx, e.ID, v1))
	s.Require().NoError(s.store.RemoveAttendee(s.ctx, e.ID, v1))
	found, err = s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]id.AccountID{v2, v3}, found.Attendees)

	s.ErrorIs(s.store.AddAttendee(s.ctx, id.NewEventID(), v1, 0), sentinel.ErrNotFound)
}

func (s *EventStoreSuite) TestConcurrentStrictAddsRespectLimit() {
	e := s.create(s.org, "Marathon Water Station", "Chennai", time.Now())

	const workers = 20
	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.AddAttendee(s.ctx, e.ID, id.NewAccountID(), 2); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(2), admitted.Load())
}
