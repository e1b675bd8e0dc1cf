package memory

import (
	"context"
	"sync"

	"webnova-quiz-service/internal/domain"
)

// CredentialStore maps emails to credentials in memory.
type CredentialStore struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{byEmail: make(map[string]domain.Credential)}
}

func (s *CredentialStore) Create(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[cred.Email]; ok {
		return domain.ErrEmailTaken
	}
	s.byEmail[cred.Email] = cred
	return nil
}

func (s *CredentialStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmail, email)
	return nil
}

func (s *CredentialStore) FindByEmail(_ context.Context, email string) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.byEmail[email]
	if !ok {
		return domain.Credential{}, domain.ErrUserNotFound
	}
	return cred, nil
}
