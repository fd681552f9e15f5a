package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"voluntr/internal/organization/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
)

// InMemory is a concurrency-safe organization store with the same uniqueness
// rules as the postgres schema: one organization per admin, names unique
// case-insensitively.
type InMemory struct {
	mu      sync.RWMutex
	orgs    map[id.OrganizationID]*models.Organization
	byName  map[string]id.OrganizationID
	byAdmin map[id.AccountID]id.OrganizationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		orgs:    make(map[id.OrganizationID]*models.Organization),
		byName:  make(map[string]id.OrganizationID),
		byAdmin: make(map[id.AccountID]id.OrganizationID),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *InMemory) CreateIfAvailable(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nameKey(org.Name)
	if _, taken := s.byName[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byAdmin[org.AdminAccountID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *org
	s.orgs[org.ID] = &cp
	s.byName[key] = org.ID
	s.byAdmin[org.AdminAccountID] = org.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.orgs[org.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	newKey := nameKey(org.Name)
	if owner, taken := s.byName[newKey]; taken && owner != org.ID {
		return sentinel.ErrAlreadyUsed
	}
	delete(s.byName, nameKey(existing.Name))
	s.byName[newKey] = org.ID
	cp := *org
	s.orgs[org.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (s *InMemory) FindByAdmin(_ context.Context, admin id.AccountID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orgID, ok := s.byAdmin[admin]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.orgs[orgID]
	return &cp, nil
}

// List returns all organizations ordered by name.
func (s *InMemory) List(_ context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		cp := *org
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return nameKey(out[i].Name) < nameKey(out[j].Name) })
	return out, nil
}

func (s *InMemory) ListByIDs(_ context.Context, ids []id.OrganizationID) (map[id.OrganizationID]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.OrganizationID]*models.Organization, len(ids))
	for _, orgID := range ids {
		if org, ok := s.orgs[orgID]; ok {
			cp := *org
			out[orgID] = &cp
		}
	}
	return out, nil
}

// Execute loads the organization, runs validate, then mutate, and persists the
// result under the store lock.
func (s *InMemory) Execute(_ context.Context, orgID id.OrganizationID, validate func(*models.Organization) error, mutate func(*models.Organization)) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *org
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	s.orgs[orgID] = &cp
	out := cp
	return &out, nil
}
