// Package memory provides the in-memory audit store used by unit tests and
// by deployments that run without Postgres or Kafka.
package memory

import (
	"context"
	"sync"

	id "giggate/pkg/domain"
	"giggate/pkg/platform/audit"
)

// Store keeps events in memory, append-only.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListByIdentity(_ context.Context, identity id.Identity) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, event := range s.events {
		if event.Identity == identity {
			out = append(out, event)
		}
	}
	return out, nil
}

// All returns every stored event; test helper.
func (s *Store) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...)
}
