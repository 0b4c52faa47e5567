package session

import (
	"context"
	"sync"

	"okoa/internal/domain"
	pkgerrors "okoa/pkg/errors"
)

// MemoryStore is the process-local Store used in tests and when Redis is
// not configured. Copies in, copies out; callers never share the stored
// aggregate.
type MemoryStore struct {
	mu   sync.Mutex
	apps map[string]domain.LoanApplication
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: make(map[string]domain.LoanApplication)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*domain.LoanApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[sessionID]
	if !ok {
		return nil, pkgerrors.ErrApplicationNotFound
	}
	return &app, nil
}

func (s *MemoryStore) Merge(ctx context.Context, sessionID string, patch domain.ApplicationPatch) (*domain.LoanApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app := s.apps[sessionID]
	patch.Apply(&app)
	s.apps[sessionID] = app

	out := app
	return &out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.apps, sessionID)
	return nil
}
