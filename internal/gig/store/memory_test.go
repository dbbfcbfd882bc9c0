package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"giggate/internal/gig/models"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/sentinel"
)

type GigStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *GigStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestGigStoreSuite(t *testing.T) {
	suite.Run(t, new(GigStoreSuite))
}

func (s *GigStoreSuite) newGig(title string) *models.Gig {
	gig, err := models.NewGig(id.NewGigID(),
		"0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		title, "description", []string{"Design"}, 1000, 0.5, time.Now())
	s.Require().NoError(err)
	return gig
}

func (s *GigStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds gig by ID", func() {
		gig := s.newGig("Test Gig")
		s.Require().NoError(s.store.Create(s.ctx, gig))

		found, err := s.store.FindByID(s.ctx, gig.ID)
		s.Require().NoError(err)
		s.Equal(gig.Title, found.Title)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewGigID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate IDs", func() {
		gig := s.newGig("Duplicate")
		s.Require().NoError(s.store.Create(s.ctx, gig))
		s.Require().ErrorIs(s.store.Create(s.ctx, gig), sentinel.ErrConflict)
	})

	s.Run("reads are copies, not aliases", func() {
		gig := s.newGig("Aliasing")
		s.Require().NoError(s.store.Create(s.ctx, gig))

		found, err := s.store.FindByID(s.ctx, gig.ID)
		s.Require().NoError(err)
		found.Title = "mutated"

		again, err := s.store.FindByID(s.ctx, gig.ID)
		s.Require().NoError(err)
		s.Equal("Aliasing", again.Title)
	})
}

func (s *GigStoreSuite) TestListActive() {
	active := s.newGig("Active")
	inactive := s.newGig("Inactive")
	inactive.ApplyDeactivation(time.Now())

	s.Require().NoError(s.store.Create(s.ctx, active))
	s.Require().NoError(s.store.Create(s.ctx, inactive))

	gigs, err := s.store.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(gigs, 1)
	s.Equal("Active", gigs[0].Title)
}

func (s *GigStoreSuite) TestExecute() {
	s.Run("applies mutation when validation passes", func() {
		gig := s.newGig("Execute")
		s.Require().NoError(s.store.Create(s.ctx, gig))

		updated, err := s.store.Execute(s.ctx, gig.ID,
			func(g *models.Gig) error { return g.CanDeactivate() },
			func(g *models.Gig) { g.ApplyDeactivation(time.Now()) },
		)
		s.Require().NoError(err)
		s.Equal(models.GigStatusInactive, updated.Status)
	})

	s.Run("returns validation error without mutating", func() {
		gig := s.newGig("Guarded")
		gig.ApplyDeactivation(time.Now())
		s.Require().NoError(s.store.Create(s.ctx, gig))

		_, err := s.store.Execute(s.ctx, gig.ID,
			func(g *models.Gig) error { return g.CanDeactivate() },
			func(g *models.Gig) { g.ApplyDeactivation(time.Now()) },
		)
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeInvariantViolation))
	})

	s.Run("returns ErrNotFound for unknown gig", func() {
		_, err := s.store.Execute(s.ctx, id.NewGigID(),
			func(g *models.Gig) error { return nil },
			func(g *models.Gig) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentDeactivation verifies exactly one of many racing deactivations
// wins; all others observe the already-inactive state.
func (s *GigStoreSuite) TestConcurrentDeactivation() {
	gig := s.newGig("Contended")
	s.Require().NoError(s.store.Create(s.ctx, gig))

	const goroutines = 32
	var wg sync.WaitGroup
	var wins atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(s.ctx, gig.ID,
				func(g *models.Gig) error { return g.CanDeactivate() },
				func(g *models.Gig) { g.ApplyDeactivation(time.Now()) },
			)
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one deactivation must win")

	found, err := s.store.FindByID(s.ctx, gig.ID)
	s.Require().NoError(err)
	s.False(found.IsActive())
}
