package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"giggate/internal/eligibility/models"
	gigservice "giggate/internal/gig/service"
	gigstore "giggate/internal/gig/store"
	"giggate/internal/oracle"
	"giggate/internal/verification/center"
	verservice "giggate/internal/verification/service"
	verstore "giggate/internal/verification/store"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

const (
	creator id.Identity = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	worker  id.Identity = "0x00192fb10df37c9fb26829eb2cc623cd1bf599e8"
)

type noopDispatcher struct{}

func (noopDispatcher) Enqueue(context.Context, center.DecisionCommand) {}

// EligibilityServiceSuite wires real in-memory stores so evaluations exercise
// the same paths production does, minus the network.
type EligibilityServiceSuite struct {
	suite.Suite
	gigs         *gigservice.Service
	verification *verservice.Service
	oracle       *oracle.Static
	service      *Service
	ctx          context.Context
}

func (s *EligibilityServiceSuite) SetupTest() {
	s.gigs = gigservice.New(gigstore.NewInMemory())
	s.verification = verservice.New(verstore.NewInMemory(), noopDispatcher{})
	s.oracle = oracle.NewStatic(nil)
	s.service = New(s.gigs, s.verification, s.oracle)
	s.ctx = context.Background()
}

func TestEligibilityServiceSuite(t *testing.T) {
	suite.Run(t, new(EligibilityServiceSuite))
}

func (s *EligibilityServiceSuite) createGig(minScore id.TrustScore) id.GigID {
	gig, err := s.gigs.Create(s.ctx, creator, "Design a logo", "Vector logo",
		[]string{"Design"}, 1_000_000, minScore)
	s.Require().NoError(err)
	return gig.ID
}

func (s *EligibilityServiceSuite) approve(identity id.Identity) {
	req, err := s.verification.Submit(s.ctx, identity, id.LevelBasic,
		id.ComputeCommitment([]byte(identity.String())), id.LevelBasic.MinDeposit())
	s.Require().NoError(err)
	_, err = s.verification.RecordDecision(s.ctx, req.ID, true, "center-1", "")
	s.Require().NoError(err)
}

func (s *EligibilityServiceSuite) TestApprovedIdentityAboveThreshold() {
	gigID := s.createGig(0.7)
	s.approve(worker)
	s.oracle.SetScore(worker, 0.8)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err)
	s.True(decision.Allowed)
	s.Equal(models.ReasonAllowed, decision.Reason)
	s.Equal(id.TrustScore(0.8), decision.ObservedScore)
	s.Equal(id.TrustScore(0.7), decision.RequiredScore)
}

func (s *EligibilityServiceSuite) TestScoreBelowThreshold() {
	gigID := s.createGig(0.7)
	s.approve(worker)
	s.oracle.SetScore(worker, 0.5)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err)
	s.False(decision.Allowed)
	s.Equal(models.ReasonScoreBelowThreshold, decision.Reason)
	s.Equal(id.TrustScore(0.5), decision.ObservedScore)
}

func (s *EligibilityServiceSuite) TestPendingVerification() {
	gigID := s.createGig(0.5)
	_, err := s.verification.Submit(s.ctx, worker, id.LevelBasic,
		id.ComputeCommitment([]byte("material")), id.LevelBasic.MinDeposit())
	s.Require().NoError(err)
	s.oracle.SetScore(worker, 0.9)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err)
	s.False(decision.Allowed)
	s.Equal(models.ReasonVerificationPending, decision.Reason)
}

func (s *EligibilityServiceSuite) TestDeclinedReadsAsNotVerified() {
	gigID := s.createGig(0.5)
	req, err := s.verification.Submit(s.ctx, worker, id.LevelBasic,
		id.ComputeCommitment([]byte("material")), id.LevelBasic.MinDeposit())
	s.Require().NoError(err)
	_, err = s.verification.RecordDecision(s.ctx, req.ID, false, "center-1", "mismatch")
	s.Require().NoError(err)
	s.oracle.SetScore(worker, 0.9)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err)
	s.Equal(models.ReasonNotVerified, decision.Reason)
}

func (s *EligibilityServiceSuite) TestNeverSubmittedReadsAsNotVerified() {
	gigID := s.createGig(0.5)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err)
	s.Equal(models.ReasonNotVerified, decision.Reason)
}

func (s *EligibilityServiceSuite) TestOracleOutageFailsClosed() {
	gigID := s.createGig(0.7)
	s.approve(worker)
	s.oracle.SetScore(worker, 0.9)
	s.oracle.SetDown(true)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err, "oracle outage must not surface as an error")
	s.False(decision.Allowed)
	s.Equal(models.ReasonScoreBelowThreshold, decision.Reason)
	s.Equal(id.TrustScore(0), decision.ObservedScore)
	s.Equal(id.TrustScore(0.7), decision.RequiredScore)
}

func (s *EligibilityServiceSuite) TestAnonymousIdentity() {
	gigID := s.createGig(0.5)

	decision, err := s.service.Evaluate(s.ctx, "", gigID)
	s.Require().NoError(err)
	s.Equal(models.ReasonNoIdentity, decision.Reason)

	s.Run("even when the gig does not exist", func() {
		decision, err := s.service.Evaluate(s.ctx, "", id.NewGigID())
		s.Require().NoError(err)
		s.Equal(models.ReasonNoIdentity, decision.Reason)
	})
}

func (s *EligibilityServiceSuite) TestInactiveGig() {
	gigID := s.createGig(0.5)
	_, err := s.gigs.Deactivate(s.ctx, gigID, creator)
	s.Require().NoError(err)
	s.approve(worker)
	s.oracle.SetScore(worker, 0.9)

	decision, err := s.service.Evaluate(s.ctx, worker, gigID)
	s.Require().NoError(err)
	s.Equal(models.ReasonGigInactive, decision.Reason)
}

func (s *EligibilityServiceSuite) TestUnknownGigPropagatesNotFound() {
	_, err := s.service.Evaluate(s.ctx, worker, id.NewGigID())
	s.Require().Error(err)
	s.True(derrors.HasCode(err, derrors.CodeNotFound))
}
