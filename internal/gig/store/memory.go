// Package store provides gig persistence. InMemory backs unit tests and
// DSN-less deployments; Postgres is the production ledger adapter.
package store

import (
	"context"
	"sync"

	"giggate/internal/gig/models"
	id "giggate/pkg/domain"
	"giggate/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. Every read hands out a clone so
// callers can never mutate shared state outside Execute.
type InMemory struct {
	mu   sync.RWMutex
	gigs map[id.GigID]*models.Gig
}

func NewInMemory() *InMemory {
	return &InMemory{gigs: make(map[id.GigID]*models.Gig)}
}

func (s *InMemory) Create(_ context.Context, gig *models.Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.gigs[gig.ID]; exists {
		return sentinel.ErrConflict
	}
	s.gigs[gig.ID] = gig.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, gigID id.GigID) (*models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gig, ok := s.gigs[gigID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return gig.Clone(), nil
}

func (s *InMemory) ListActive(_ context.Context) ([]*models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Gig
	for _, gig := range s.gigs {
		if gig.IsActive() {
			out = append(out, gig.Clone())
		}
	}
	return out, nil
}

// Execute atomically runs validate-then-mutate on one gig while holding the
// store lock. This is the single-record linearizability point: concurrent
// deactivations serialize here, so the loser observes the already-inactive
// state inside validate.
func (s *InMemory) Execute(_ context.Context, gigID id.GigID, validate func(*models.Gig) error, mutate func(*models.Gig)) (*models.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gig, ok := s.gigs[gigID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(gig); err != nil {
		return nil, err
	}
	mutate(gig)
	return gig.Clone(), nil
}
