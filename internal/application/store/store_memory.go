package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"voluntr/internal/application/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
)

type pairKey struct {
	event   id.EventID
	account id.AccountID
}

// InMemory keeps applications with a (event, account) uniqueness index.
type InMemory struct {
	mu     sync.RWMutex
	apps   map[id.ApplicationID]*models.Application
	byPair map[pairKey]id.ApplicationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		apps:   make(map[id.ApplicationID]*models.Application),
		byPair: make(map[pairKey]id.ApplicationID),
	}
}

func clone(a *models.Application) *models.Application {
	cp := *a
	if a.DecidedAt != nil {
		t := *a.DecidedAt
		cp.DecidedAt = &t
	}
	return &cp
}

// Create inserts app; a second application for the same pair fails with
// ErrAlreadyUsed whatever the first one's status.
func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{app.EventID, app.AccountID}
	if _, taken := s.byPair[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.apps[app.ID] = clone(app)
	s.byPair[key] = app.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(app), nil
}

func (s *InMemory) FindByEventAndAccount(_ context.Context, eventID id.EventID, accountID id.AccountID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appID, ok := s.byPair[pairKey{eventID, accountID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.apps[appID]), nil
}

// DeletePending removes a pending application. Decided applications are kept
// and reported as ErrInvalidState.
func (s *InMemory) DeletePending(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !app.IsPending() {
		return sentinel.ErrInvalidState
	}
	delete(s.apps, appID)
	delete(s.byPair, pairKey{app.EventID, app.AccountID})
	return nil
}

func (s *InMemory) UpdateStatus(_ context.Context, appID id.ApplicationID, status models.Status, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Decide(status, decidedAt)
	return nil
}

func (s *InMemory) list(match func(*models.Application) bool) []*models.Application {
	out := []*models.Application{}
	for _, app := range s.apps {
		if match(app) {
			out = append(out, clone(app))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out
}

// ListByEvent returns the event's applications, most recently applied first.
func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(func(a *models.Application) bool { return a.EventID == eventID }), nil
}

// ListByAccount returns the volunteer's applications, most recently applied first.
func (s *InMemory) ListByAccount(_ context.Context, accountID id.AccountID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(func(a *models.Application) bool { return a.AccountID == accountID }), nil
}

func (s *InMemory) CountPendingByOrganization(_ context.Context, orgID id.OrganizationID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, app := range s.apps {
		if app.OrganizationID == orgID && app.IsPending() {
			n++
		}
	}
	return n, nil
}
