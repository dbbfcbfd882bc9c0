// Package service implements eligibility evaluation: the only component that
// joins the gig registry, the verification state machine, and the trust score
// oracle. It reads all three and renders a decision; it never writes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	emetrics "giggate/internal/eligibility/metrics"
	"giggate/internal/eligibility/models"
	gigmodels "giggate/internal/gig/models"
	vermodels "giggate/internal/verification/models"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/audit"
	"giggate/pkg/requestcontext"
)

// GigReader loads gig records. Get returns CodeNotFound for unknown ids.
type GigReader interface {
	Get(ctx context.Context, gigID id.GigID) (*gigmodels.Gig, error)
}

// VerificationReader resolves an identity's current verification request,
// nil when none was ever submitted.
type VerificationReader interface {
	Current(ctx context.Context, identity id.Identity) (*vermodels.Request, error)
}

// ScoreSource resolves an identity's trust score.
type ScoreSource interface {
	Score(ctx context.Context, identity id.Identity) (id.TrustScore, error)
}

// Service evaluates (identity, gig) pairs.
type Service struct {
	gigs         GigReader
	verification VerificationReader
	oracle       ScoreSource
	tracer       trace.Tracer
	auditor      *audit.Publisher
	metrics      *emetrics.Metrics
	logger       *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithMetrics(m *emetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(gigs GigReader, verification VerificationReader, oracle ScoreSource, opts ...Option) *Service {
	s := &Service{
		gigs:         gigs,
		verification: verification,
		oracle:       oracle,
		tracer:       otel.Tracer("giggate/eligibility"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate renders the eligibility decision for an identity and a gig.
//
// Only an unknown gig id is an error; every other precondition failure is a
// normal decision carrying the first unmet reason. An anonymous identity
// short-circuits before any store is touched, preserving the precedence order
// even when the gig does not exist.
func (s *Service) Evaluate(ctx context.Context, identity id.Identity, gigID id.GigID) (models.Decision, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "eligibility.evaluate",
		trace.WithAttributes(attribute.String("gig.id", gigID.String())))
	defer span.End()

	if identity.IsZero() {
		return s.finish(ctx, identity, gigID, span, start, models.Decision{Reason: models.ReasonNoIdentity}), nil
	}

	gig, err := s.gigs.Get(ctx, gigID)
	if err != nil {
		span.RecordError(err)
		return models.Decision{}, err
	}
	if !gig.IsActive() {
		return s.finish(ctx, identity, gigID, span, start, models.Decision{Reason: models.ReasonGigInactive}), nil
	}

	// The verification status and the score come from independent stores, so
	// fetch them in parallel. The score fetch is speculative: it is unused
	// unless the verification turns out approved.
	var (
		current      *vermodels.Request
		score        id.TrustScore
		oracleFailed bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.verification.Current(gctx, identity)
		return err
	})
	g.Go(func() error {
		var err error
		score, err = s.oracle.Score(gctx, identity)
		if err != nil {
			// Fail closed: an unreachable oracle means an unknown score, and
			// an unknown score never clears a threshold.
			oracleFailed = true
			if s.logger != nil {
				s.logger.WarnContext(gctx, "trust score oracle failed, failing closed",
					"identity", identity.String(),
					"error", err.Error(),
				)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		if errors.Is(err, context.Canceled) {
			return models.Decision{}, err
		}
		return models.Decision{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load verification status")
	}

	decision := decide(Inputs{
		Identity:     identity,
		Gig:          gig,
		Verification: current,
		Score:        score,
		OracleFailed: oracleFailed,
	})
	return s.finish(ctx, identity, gigID, span, start, decision), nil
}

func (s *Service) finish(ctx context.Context, identity id.Identity, gigID id.GigID, span trace.Span, start time.Time, decision models.Decision) models.Decision {
	span.SetAttributes(
		attribute.Bool("eligibility.allowed", decision.Allowed),
		attribute.String("eligibility.reason", string(decision.Reason)),
	)

	if s.auditor != nil {
		outcome := "denied"
		if decision.Allowed {
			outcome = "allowed"
		}
		s.auditor.Emit(ctx, audit.Event{
			Identity:  identity,
			Action:    audit.ActionEligibilityEvaluated,
			Subject:   gigID.String(),
			Decision:  outcome,
			Reason:    string(decision.Reason),
			UserAgent: requestcontext.UserAgent(ctx),
		})
	}
	s.metrics.IncrementDecisions(string(decision.Reason))
	s.metrics.ObserveLatency(time.Since(start))
	return decision
}
