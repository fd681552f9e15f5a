package store

import (
	"context"
	"sync"

	"voluntr/internal/identity/models"
	id "voluntr/pkg/domain"
	"voluntr/pkg/platform/sentinel"
)

// InMemory is the account store used when no database is configured.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
	byEmail  map[string]id.AccountID
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[id.AccountID]*models.Account),
		byEmail:  make(map[string]id.AccountID),
	}
}

func clone(a *models.Account) *models.Account {
	cp := *a
	cp.Skills = append([]string{}, a.Skills...)
	cp.Interests = append([]string{}, a.Interests...)
	if a.DateOfBirth != nil {
		dob := *a.DateOfBirth
		cp.DateOfBirth = &dob
	}
	return &cp
}

// CreateIfAvailable inserts the account unless its email is taken.
func (s *InMemory) CreateIfAvailable(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(a.Email)
	if _, taken := s.byEmail[email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.accounts[a.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.accounts[a.ID] = clone(a)
	s.byEmail[email] = a.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.accounts[accountID]), nil
}

func (s *InMemory) ListByIDs(_ context.Context, ids []id.AccountID) (map[id.AccountID]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.AccountID]*models.Account, len(ids))
	for _, accountID := range ids {
		if a, ok := s.accounts[accountID]; ok {
			out[accountID] = clone(a)
		}
	}
	return out, nil
}

func (s *InMemory) Update(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.accounts[a.ID] = clone(a)
	return nil
}

// Execute runs validate then mutate against the stored account under the write lock.
func (s *InMemory) Execute(_ context.Context, accountID id.AccountID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	a := clone(current)
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)
	s.accounts[accountID] = a
	return clone(a), nil
}
