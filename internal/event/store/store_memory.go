package store

import (
	"context"
	"sort"
	"sync"

	"voluntr/internal/event/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
)

// InMemory stores events and their attendee sets.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.EventID]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]*models.Event)}
}

func clone(e *models.Event) *models.Event {
	cp := *e
	cp.Causes = append([]string{}, e.Causes...)
	cp.Skills = append([]string{}, e.Skills...)
	cp.Attendees = append([]id.AccountID{}, e.Attendees...)
	return &cp
}

func (s *InMemory) Create(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[e.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.events[e.ID] = clone(e)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(e), nil
}

// ListByOrganization returns the organization's events, newest first.
func (s *InMemory) ListByOrganization(_ context.Context, orgID id.OrganizationID) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Event{}
	for _, e := range s.events {
		if e.OrganizationID == orgID {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListDiscoverable returns open events matching f, soonest first.
func (s *InMemory) ListDiscoverable(_ context.Context, f models.Filter) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[id.OrganizationID]struct{}
	if f.OrganizationIDs != nil {
		allowed = make(map[id.OrganizationID]struct{}, len(f.OrganizationIDs))
		for _, orgID := range f.OrganizationIDs {
			allowed[orgID] = struct{}{}
		}
	}

	out := []*models.Event{}
	for _, e := range s.events {
		if !e.IsOpen() || !e.MatchesText(f.Text) || !e.MatchesCause(f.Cause) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[e.OrganizationID]; !ok {
				continue
			}
		}
		out = append(out, clone(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) ListByIDs(_ context.Context, ids []id.EventID) (map[id.EventID]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.EventID]*models.Event, len(ids))
	for _, eventID := range ids {
		if e, ok := s.events[eventID]; ok {
			out[eventID] = clone(e)
		}
	}
	return out, nil
}

// AddAttendee inserts accountID into the attendee set. When limit > 0 and the
// account is not yet attending, the add fails with ErrCapacityReached if the
// set already holds limit members.
func (s *InMemory) AddAttendee(_ context.Context, eventID id.EventID, accountID id.AccountID, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if e.HasAttendee(accountID) {
		return nil
	}
	if limit > 0 && len(e.Attendees) >= limit {
		return sentinel.ErrCapacityReached
	}
	e.AddAttendee(accountID)
	return nil
}

func (s *InMemory) RemoveAttendee(_ context.Context, eventID id.EventID, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return sentinel.ErrNotFound
	}
	e.RemoveAttendee(accountID)
	return nil
}

// SetStatus changes an event's lifecycle status.
func (s *InMemory) SetStatus(_ context.Context, eventID id.EventID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return sentinel.ErrNotFound
	}
	e.Status = status
	return nil
}
