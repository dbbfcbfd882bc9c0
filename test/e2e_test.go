package test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	elighandler "giggate/internal/eligibility/handler"
	eligservice "giggate/internal/eligibility/service"
	gighandler "giggate/internal/gig/handler"
	gigservice "giggate/internal/gig/service"
	gigstore "giggate/internal/gig/store"
	"giggate/internal/oracle"
	"giggate/internal/platform/middleware"
	"giggate/internal/token"
	"giggate/internal/verification/center"
	verhandler "giggate/internal/verification/handler"
	verservice "giggate/internal/verification/service"
	verstore "giggate/internal/verification/store"
	id "giggate/pkg/domain"
	"giggate/pkg/testutil"
)

const (
	e2eSigningKey   = "e2e-signing-key"
	e2eCenterSecret = "e2e-center-secret"
	workerAddr      = "0x1111111111111111111111111111111111111111"
)

// gateway wires the real services against in-memory stores, the way main
// assembles them when no external backends are configured.
type gateway struct {
	router *chi.Mux
	tokens *token.Service
	oracle *oracle.Static
}

func newGateway(t *testing.T) *gateway {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := token.NewService(e2eSigningKey, "giggate")
	scores := oracle.NewStatic(nil)
	dispatcher := center.NewDispatcher(16, log)

	gigs := gigservice.New(gigstore.NewInMemory())
	verification := verservice.New(verstore.NewInMemory(), dispatcher)
	eligibility := eligservice.New(gigs, verification, scores)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	gighandler.New(gigs, log, tokens).Register(router)
	verhandler.New(verification, log, tokens, e2eCenterSecret).Register(router)
	elighandler.New(eligibility, log, tokens).Register(router)

	return &gateway{router: router, tokens: tokens, oracle: scores}
}

func (g *gateway) bearer(t *testing.T, address string) string {
	t.Helper()
	identity, err := id.ParseIdentity(address)
	require.NoError(t, err)
	tok, err := g.tokens.GenerateToken(identity, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

// TestWorkerOnboardingFlow walks the full lifecycle: a gig is posted, a worker
// submits verification, the center approves it, and the worker becomes
// eligible once their trust score clears the gig's bar.
func TestWorkerOnboardingFlow(t *testing.T) {
	g := newGateway(t)
	commitment := id.ComputeCommitment([]byte("worker verification material"))

	var gigID string

	testutil.Given(t, "a client posts a gig requiring trust score 0.7", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/gigs", map[string]any{
			"title":           "Audit a staking contract",
			"description":     "Review withdrawal paths",
			"types":           []string{"audit"},
			"bounty_wei":      int64(2_000_000_000_000_000_000),
			"min_trust_score": 0.7,
		})
		req.Header.Set("Authorization", g.bearer(t, "0x2222222222222222222222222222222222222222"))
		rr := testutil.DoRequest(g.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		created := testutil.UnmarshalResponse[gighandler.GigResponse](t, rr)
		require.NotEmpty(t, created.ID)
		gigID = created.ID
	})

	testutil.When(t, "an unverified worker asks about eligibility", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/eligibility/gigs/"+gigID)
		req.Header.Set("Authorization", g.bearer(t, workerAddr))
		rr := testutil.DoRequest(g.router, req)

		testutil.AssertStatusOK(t, rr)
		decision := testutil.UnmarshalResponse[elighandler.DecisionResponse](t, rr)
		require.False(t, decision.Allowed)
		require.Equal(t, "not_verified", decision.Reason)
	})

	var requestID string

	testutil.When(t, "the worker submits an enhanced verification request", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/verification/requests", map[string]any{
			"level":       1,
			"commitment":  commitment.String(),
			"deposit_wei": int64(50_000_000_000_000_000),
		})
		req.Header.Set("Authorization", g.bearer(t, workerAddr))
		rr := testutil.DoRequest(g.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		submitted := testutil.UnmarshalResponse[verhandler.RequestResponse](t, rr)
		require.Equal(t, "pending", submitted.Status)
		requestID = submitted.ID
	})

	testutil.Then(t, "eligibility reports the pending verification", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/eligibility/gigs/"+gigID)
		req.Header.Set("Authorization", g.bearer(t, workerAddr))
		rr := testutil.DoRequest(g.router, req)

		decision := testutil.UnmarshalResponse[elighandler.DecisionResponse](t, rr)
		require.False(t, decision.Allowed)
		require.Equal(t, "verification_pending", decision.Reason)
	})

	testutil.When(t, "the center approves via the callback", func(t *testing.T) {
		path := fmt.Sprintf("/verification/requests/%s/callback", requestID)
		req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]any{
			"approved": true,
			"verifier": "center-operator-7",
		})
		req.Header.Set(center.SecretHeader, e2eCenterSecret)
		rr := testutil.DoRequest(g.router, req)

		testutil.AssertStatusOK(t, rr)
		decided := testutil.UnmarshalResponse[verhandler.RequestResponse](t, rr)
		require.Equal(t, "approved", decided.Status)
	})

	testutil.Then(t, "eligibility depends only on the trust score", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/eligibility/gigs/"+gigID)
		req.Header.Set("Authorization", g.bearer(t, workerAddr))
		rr := testutil.DoRequest(g.router, req)

		decision := testutil.UnmarshalResponse[elighandler.DecisionResponse](t, rr)
		require.False(t, decision.Allowed)
		require.Equal(t, "score_below_threshold", decision.Reason)

		g.oracle.SetScore(id.Identity(workerAddr), 0.85)

		rr = testutil.DoRequest(g.router, testutil.WithIdentity(
			testutil.NewRequest(t, http.MethodGet, "/eligibility/gigs/"+gigID), workerAddr))
		allowed := testutil.UnmarshalResponse[elighandler.DecisionResponse](t, rr)
		require.True(t, allowed.Allowed)
		require.Equal(t, "allowed", allowed.Reason)
		require.InDelta(t, 0.85, allowed.ObservedScore, 1e-9)
	})

	testutil.Then(t, "anonymous callers still get a decision, not a 401", func(t *testing.T) {
		rr := testutil.DoRequest(g.router, testutil.NewRequest(t, http.MethodGet, "/eligibility/gigs/"+gigID))
		testutil.AssertStatusOK(t, rr)
		decision := testutil.UnmarshalResponse[elighandler.DecisionResponse](t, rr)
		require.False(t, decision.Allowed)
		require.Equal(t, "no_identity", decision.Reason)
	})
}

// TestGigDeactivationClosesTheDoor checks that once a gig goes inactive every
// evaluation reports gig_inactive, regardless of verification status.
func TestGigDeactivationClosesTheDoor(t *testing.T) {
	g := newGateway(t)
	creator := "0x3333333333333333333333333333333333333333"

	req := testutil.NewJSONRequest(t, http.MethodPost, "/gigs", map[string]any{
		"title":           "Translate docs",
		"description":     "English to Spanish",
		"types":           []string{"translation"},
		"bounty_wei":      int64(1_000_000_000_000_000),
		"min_trust_score": 0.0,
	})
	req.Header.Set("Authorization", g.bearer(t, creator))
	rr := testutil.DoRequest(g.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	gig := testutil.UnmarshalResponse[gighandler.GigResponse](t, rr)

	req = testutil.NewRequest(t, http.MethodPost, "/gigs/"+gig.ID+"/deactivate")
	req.Header.Set("Authorization", g.bearer(t, creator))
	rr = testutil.DoRequest(g.router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "status", "inactive")

	// A second deactivation reports the conflict instead of pretending
	// success.
	req = testutil.NewRequest(t, http.MethodPost, "/gigs/"+gig.ID+"/deactivate")
	req.Header.Set("Authorization", g.bearer(t, creator))
	rr = testutil.DoRequest(g.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

	req = testutil.NewRequest(t, http.MethodGet, "/eligibility/gigs/"+gig.ID)
	req.Header.Set("Authorization", g.bearer(t, workerAddr))
	rr = testutil.DoRequest(g.router, req)
	decision := testutil.UnmarshalResponse[elighandler.DecisionResponse](t, rr)
	require.False(t, decision.Allowed)
	require.Equal(t, "gig_inactive", decision.Reason)
}
