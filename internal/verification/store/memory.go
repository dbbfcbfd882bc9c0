// Package store provides verification request persistence. Requests are
// append-only per identity; a latest pointer makes "current" a derived fact
// rather than mutable shared state.
package store

import (
	"context"
	"sync"

	"giggate/internal/verification/models"
	id "giggate/pkg/domain"
	"giggate/pkg/platform/sentinel"
)

// InMemory keeps every request by id plus a per-identity latest pointer.
// Reads hand out clones; all mutation goes through Execute under the lock.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.Request
	history  map[id.Identity][]id.RequestID
	latest   map[id.Identity]id.RequestID
}

func NewInMemory() *InMemory {
	return &InMemory{
		requests: make(map[id.RequestID]*models.Request),
		history:  make(map[id.Identity][]id.RequestID),
		latest:   make(map[id.Identity]id.RequestID),
	}
}

// Create appends a request and promotes it to the identity's current one.
// Prior requests stay retrievable by id but are no longer authoritative.
func (s *InMemory) Create(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return sentinel.ErrConflict
	}
	s.requests[req.ID] = req.Clone()
	s.history[req.Identity] = append(s.history[req.Identity], req.ID)
	s.latest[req.Identity] = req.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return req.Clone(), nil
}

// FindCurrent returns the identity's most recent request.
func (s *InMemory) FindCurrent(_ context.Context, identity id.Identity) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requestID, ok := s.latest[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.requests[requestID].Clone(), nil
}

// ListByIdentity returns the identity's full submission history, oldest first.
func (s *InMemory) ListByIdentity(_ context.Context, identity id.Identity) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.history[identity]
	out := make([]*models.Request, 0, len(ids))
	for _, requestID := range ids {
		out = append(out, s.requests[requestID].Clone())
	}
	return out, nil
}

// Execute atomically runs validate-then-mutate on one request while holding
// the store lock. Racing decisions and withdrawals serialize here; the loser
// observes the terminal state inside validate.
func (s *InMemory) Execute(_ context.Context, requestID id.RequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	mutate(req)
	return req.Clone(), nil
}
