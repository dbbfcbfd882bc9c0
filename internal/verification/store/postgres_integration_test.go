//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"giggate/internal/verification/models"
	"giggate/internal/verification/store"
	id "giggate/pkg/domain"
	"giggate/pkg/platform/sentinel"
	"giggate/pkg/testutil/containers"
)

const (
	workerAddr   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	verifierName = "center-operator-1"
)

type PostgresRequestStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresRequestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRequestStoreSuite))
}

func (s *PostgresRequestStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresRequestStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "verification_requests")
	s.Require().NoError(err)
}

func (s *PostgresRequestStoreSuite) newRequest(identity string, at time.Time) *models.Request {
	req, err := models.NewRequest(
		id.NewRequestID(),
		id.Identity(identity),
		id.LevelEnhanced,
		id.ComputeCommitment([]byte(identity+at.String())),
		id.LevelEnhanced.MinDeposit(),
		at.UTC().Truncate(time.Microsecond),
	)
	s.Require().NoError(err)
	return req
}

func (s *PostgresRequestStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	req := s.newRequest(workerAddr, time.Now())

	s.Require().NoError(s.store.Create(ctx, req))

	found, err := s.store.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.ID, found.ID)
	s.Equal(req.Identity, found.Identity)
	s.Equal(req.Level, found.Level)
	s.Equal(req.Commitment, found.Commitment)
	s.Equal(req.Deposit, found.Deposit)
	s.Equal(models.StatusPending, found.Status)
	s.Nil(found.DecidedAt)
	s.Nil(found.DispatchedAt)
}

func (s *PostgresRequestStoreSuite) TestFindCurrentFollowsLatestSubmission() {
	ctx := context.Background()
	base := time.Now()

	first := s.newRequest(workerAddr, base)
	second := s.newRequest(workerAddr, base.Add(time.Minute))
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	current, err := s.store.FindCurrent(ctx, id.Identity(workerAddr))
	s.Require().NoError(err)
	s.Equal(second.ID, current.ID, "the latest submission supersedes")

	_, err = s.store.FindCurrent(ctx, id.Identity("0xcccccccccccccccccccccccccccccccccccccccc"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRequestStoreSuite) TestListByIdentityOldestFirst() {
	ctx := context.Background()
	base := time.Now()

	first := s.newRequest(workerAddr, base)
	second := s.newRequest(workerAddr, base.Add(time.Minute))
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	history, err := s.store.ListByIdentity(ctx, id.Identity(workerAddr))
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(first.ID, history[0].ID)
	s.Equal(second.ID, history[1].ID)
}

func (s *PostgresRequestStoreSuite) TestExecutePersistsDecision() {
	ctx := context.Background()
	req := s.newRequest(workerAddr, time.Now())
	s.Require().NoError(s.store.Create(ctx, req))

	decidedAt := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := s.store.Execute(ctx, req.ID,
		func(r *models.Request) error { return r.CanDecide() },
		func(r *models.Request) { r.ApplyDecision(true, verifierName, "", decidedAt) },
	)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, updated.Status)

	found, err := s.store.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, found.Status)
	s.Equal(verifierName, found.Verifier)
	s.Require().NotNil(found.DecidedAt)
	s.WithinDuration(decidedAt, *found.DecidedAt, time.Millisecond)
}

// TestConcurrentTerminalTransitions races decisions against withdrawals; the
// row lock must let exactly one terminal transition through.
func (s *PostgresRequestStoreSuite) TestConcurrentTerminalTransitions() {
	ctx := context.Background()
	req := s.newRequest(workerAddr, time.Now())
	s.Require().NoError(s.store.Create(ctx, req))

	const goroutines = 20
	var wg sync.WaitGroup
	var wins atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			var err error
			if idx%2 == 0 {
				_, err = s.store.Execute(ctx, req.ID,
					func(r *models.Request) error { return r.CanDecide() },
					func(r *models.Request) { r.ApplyDecision(idx%4 == 0, verifierName, "", time.Now()) },
				)
			} else {
				_, err = s.store.Execute(ctx, req.ID,
					func(r *models.Request) error { return r.CanWithdraw(req.Identity) },
					func(r *models.Request) { r.ApplyWithdrawal(time.Now()) },
				)
			}
			if err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one terminal transition should win")

	found, err := s.store.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.True(found.IsTerminal())
}

func (s *PostgresRequestStoreSuite) TestDispatchMarkerSurvivesReload() {
	ctx := context.Background()
	req := s.newRequest(workerAddr, time.Now())
	s.Require().NoError(s.store.Create(ctx, req))

	var dispatched bool
	_, err := s.store.Execute(ctx, req.ID,
		func(r *models.Request) error { return r.CanDecide() },
		func(r *models.Request) { dispatched = r.MarkDispatched(time.Now()) },
	)
	s.Require().NoError(err)
	s.True(dispatched, "first marker set wins")

	_, err = s.store.Execute(ctx, req.ID,
		func(r *models.Request) error { return r.CanDecide() },
		func(r *models.Request) { dispatched = r.MarkDispatched(time.Now()) },
	)
	s.Require().NoError(err)
	s.False(dispatched, "marker is already set after reload")
}
