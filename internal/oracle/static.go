package oracle

import (
	"context"
	"sync"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

// Static is a fixed in-memory score source for tests and local development.
type Static struct {
	mu     sync.RWMutex
	scores map[id.Identity]id.TrustScore
	down   bool
}

func NewStatic(scores map[id.Identity]id.TrustScore) *Static {
	if scores == nil {
		scores = make(map[id.Identity]id.TrustScore)
	}
	return &Static{scores: scores}
}

func (s *Static) Score(_ context.Context, identity id.Identity) (id.TrustScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.down {
		return 0, derrors.New(derrors.CodeUnavailable, "trust score oracle unreachable")
	}
	score, ok := s.scores[identity]
	if !ok {
		return 0, nil
	}
	return score, nil
}

// SetScore updates one identity's score.
func (s *Static) SetScore(identity id.Identity, score id.TrustScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[identity] = score
}

// SetDown toggles simulated unavailability.
func (s *Static) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}
