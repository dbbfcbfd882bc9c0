// Package service implements the verification request state machine: submit,
// trigger the off-chain decision, record the callback, withdraw, and query
// the current status.
package service

import (
	"context"
	"errors"
	"log/slog"

	"giggate/internal/verification/center"
	vmetrics "giggate/internal/verification/metrics"
	"giggate/internal/verification/models"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/audit"
	"giggate/pkg/platform/sentinel"
	"giggate/pkg/requestcontext"
)

// Store is the persistence port for verification requests.
type Store interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	FindCurrent(ctx context.Context, identity id.Identity) (*models.Request, error)
	ListByIdentity(ctx context.Context, identity id.Identity) ([]*models.Request, error)
	Execute(ctx context.Context, requestID id.RequestID, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error)
}

// Dispatcher enqueues decision commands for background delivery. Enqueue must
// never block.
type Dispatcher interface {
	Enqueue(ctx context.Context, cmd center.DecisionCommand)
}

// Service drives the request lifecycle. All status transitions funnel through
// the store's Execute guard, which is the entire locking discipline.
type Service struct {
	store      Store
	dispatcher Dispatcher
	auditor    *audit.Publisher
	metrics    *vmetrics.Metrics
	logger     *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithMetrics(m *vmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(store Store, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{store: store, dispatcher: dispatcher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a pending request, superseding any prior request of the same
// identity as the current one. The level and deposit policy is enforced here;
// the commitment is fixed for the life of the request.
func (s *Service) Submit(ctx context.Context, identity id.Identity, level id.VerificationLevel, commitment id.Commitment, deposit id.Wei) (*models.Request, error) {
	req, err := models.NewRequest(id.NewRequestID(), identity, level, commitment, deposit, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create verification request")
	}

	s.emit(ctx, audit.Event{
		Identity: identity,
		Action:   audit.ActionVerificationSubmitted,
		Subject:  req.ID.String(),
	})
	s.metrics.IncrementSubmissions(level.String())
	return req, nil
}

// RequestDecision triggers the asynchronous off-chain decision process. It
// never blocks and is idempotent per request: only the first call for a
// pending request enqueues a command, later calls are no-ops.
func (s *Service) RequestDecision(ctx context.Context, requestID id.RequestID) error {
	now := requestcontext.Now(ctx)

	var dispatched bool
	req, err := s.store.Execute(ctx, requestID,
		func(r *models.Request) error { return r.CanDecide() },
		func(r *models.Request) { dispatched = r.MarkDispatched(now) },
	)
	if err != nil {
		return wrapRequestErr(err)
	}
	if !dispatched {
		return nil
	}

	s.dispatcher.Enqueue(ctx, center.DecisionCommand{
		RequestID:  req.ID,
		Commitment: req.Commitment,
		Level:      req.Level,
	})
	s.metrics.IncInFlight()
	return nil
}

// RecordDecision applies the center's callback. Duplicate or late callbacks,
// including one racing a withdrawal, fail with the already-decided conflict;
// only the first terminal transition wins.
func (s *Service) RecordDecision(ctx context.Context, requestID id.RequestID, approved bool, verifier, reason string) (*models.Request, error) {
	now := requestcontext.Now(ctx)

	req, err := s.store.Execute(ctx, requestID,
		func(r *models.Request) error { return r.CanDecide() },
		func(r *models.Request) { r.ApplyDecision(approved, verifier, reason, now) },
	)
	if err != nil {
		return nil, wrapRequestErr(err)
	}

	s.emit(ctx, audit.Event{
		Identity: req.Identity,
		Action:   audit.ActionVerificationDecided,
		Subject:  req.ID.String(),
		Decision: string(req.Status),
		Reason:   reason,
	})
	s.metrics.IncrementDecisions(string(req.Status))
	if req.DispatchedAt != nil {
		s.metrics.DecInFlight()
	}
	return req, nil
}

// Withdraw is the only caller-initiated cancellation path and succeeds only
// while pending. It does not cancel in-flight off-chain work; a late callback
// hits the terminal-state guard and no-ops.
func (s *Service) Withdraw(ctx context.Context, requestID id.RequestID, requester id.Identity) (*models.Request, error) {
	if requester.IsZero() {
		return nil, derrors.New(derrors.CodeUnauthorized, "authentication required")
	}

	now := requestcontext.Now(ctx)
	req, err := s.store.Execute(ctx, requestID,
		func(r *models.Request) error { return r.CanWithdraw(requester) },
		func(r *models.Request) { r.ApplyWithdrawal(now) },
	)
	if err != nil {
		return nil, wrapRequestErr(err)
	}

	s.emit(ctx, audit.Event{
		Identity: requester,
		Action:   audit.ActionVerificationWithdrawn,
		Subject:  req.ID.String(),
	})
	s.metrics.IncrementWithdrawals()
	if req.DispatchedAt != nil {
		s.metrics.DecInFlight()
	}
	return req, nil
}

// Current returns the identity's most recent request, or nil when the
// identity never submitted one.
func (s *Service) Current(ctx context.Context, identity id.Identity) (*models.Request, error) {
	req, err := s.store.FindCurrent(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load current verification request")
	}
	return req, nil
}

// Get returns one request by id; superseded requests stay retrievable.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	req, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, wrapRequestErr(err)
	}
	return req, nil
}

// History returns the identity's submissions, oldest first.
func (s *Service) History(ctx context.Context, identity id.Identity) ([]*models.Request, error) {
	requests, err := s.store.ListByIdentity(ctx, identity)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list verification requests")
	}
	return requests, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		event.UserAgent = requestcontext.UserAgent(ctx)
		s.auditor.Emit(ctx, event)
	}
}

func wrapRequestErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return derrors.New(derrors.CodeNotFound, "verification request not found")
	case derrors.HasCode(err, derrors.CodeUnauthorized),
		derrors.HasCode(err, derrors.CodeConflict):
		return err
	default:
		return derrors.Wrap(err, derrors.CodeInternal, "verification store failure")
	}
}
