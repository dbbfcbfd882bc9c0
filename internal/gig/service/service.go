// Package service orchestrates the gig registry: creation, lookup, filtered
// listing, and the one-way deactivate transition.
package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sort"
	"time"

	gigmetrics "giggate/internal/gig/metrics"
	"giggate/internal/gig/models"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/audit"
	"giggate/pkg/platform/sentinel"
	"giggate/pkg/requestcontext"
)

// Store is the persistence port the registry needs. Implementations must make
// Create and Execute atomic per record.
type Store interface {
	Create(ctx context.Context, gig *models.Gig) error
	FindByID(ctx context.Context, gigID id.GigID) (*models.Gig, error)
	ListActive(ctx context.Context) ([]*models.Gig, error)
	Execute(ctx context.Context, gigID id.GigID, validate func(*models.Gig) error, mutate func(*models.Gig)) (*models.Gig, error)
}

// Filter narrows ListActive results. Zero values match everything.
type Filter struct {
	// TextQuery is a case-insensitive substring over title and description.
	TextQuery string
	// TypeTag requires membership in the gig's category tags.
	TypeTag string
}

// Service owns gig records exclusively; no other module writes them.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *gigmetrics.Metrics
	logger  *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithMetrics(m *gigmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates inputs, assigns a fresh id, and appends an active gig.
func (s *Service) Create(ctx context.Context, creator id.Identity, title, description string, types []string, bounty id.Wei, minTrustScore id.TrustScore) (*models.Gig, error) {
	gig, err := models.NewGig(id.NewGigID(), creator, title, description, types, bounty, minTrustScore, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, gig); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create gig")
	}

	s.emit(ctx, audit.Event{
		Identity: creator,
		Action:   audit.ActionGigCreated,
		Subject:  gig.ID.String(),
	})
	s.metrics.IncrementCreated()
	return gig, nil
}

// Get loads a single gig by id.
func (s *Service) Get(ctx context.Context, gigID id.GigID) (*models.Gig, error) {
	gig, err := s.store.FindByID(ctx, gigID)
	if err != nil {
		return nil, wrapGigErr(err)
	}
	return gig, nil
}

// ListActive returns a lazy, restartable sequence of active gigs matching the
// filter, newest first. The snapshot is taken once, so iterating twice yields
// the same records.
func (s *Service) ListActive(ctx context.Context, filter Filter) (iter.Seq[*models.Gig], error) {
	start := time.Now()
	gigs, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list gigs")
	}

	matched := gigs[:0]
	for _, gig := range gigs {
		if !gig.MatchesQuery(filter.TextQuery) {
			continue
		}
		if filter.TypeTag != "" && !gig.HasType(filter.TypeTag) {
			continue
		}
		matched = append(matched, gig)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	snapshot := append([]*models.Gig{}, matched...)
	s.metrics.ObserveListLatency(time.Since(start))

	return func(yield func(*models.Gig) bool) {
		for _, gig := range snapshot {
			if !yield(gig) {
				return
			}
		}
	}, nil
}

// Deactivate flips a gig inactive, exactly once, creator only.
//
// The store's Execute holds the record lock (mutex or FOR UPDATE) across both
// checks, so a racing second caller observes the already-inactive state and
// gets CodeConflict rather than silently double-applying.
func (s *Service) Deactivate(ctx context.Context, gigID id.GigID, requester id.Identity) (*models.Gig, error) {
	if requester.IsZero() {
		return nil, derrors.New(derrors.CodeUnauthorized, "authentication required")
	}

	now := requestcontext.Now(ctx)
	gig, err := s.store.Execute(ctx, gigID,
		func(g *models.Gig) error {
			if g.Creator != requester {
				return derrors.New(derrors.CodeUnauthorized, "only the creator can deactivate a gig")
			}
			if err := g.CanDeactivate(); err != nil {
				return derrors.New(derrors.CodeConflict, "gig is already inactive")
			}
			return nil
		},
		func(g *models.Gig) {
			g.ApplyDeactivation(now)
		},
	)
	if err != nil {
		return nil, wrapGigErr(err)
	}

	s.emit(ctx, audit.Event{
		Identity: requester,
		Action:   audit.ActionGigDeactivated,
		Subject:  gig.ID.String(),
	})
	s.metrics.IncrementDeactivated()
	return gig, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		event.UserAgent = requestcontext.UserAgent(ctx)
		s.auditor.Emit(ctx, event)
	}
}

func wrapGigErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return derrors.New(derrors.CodeNotFound, "gig not found")
	case derrors.HasCode(err, derrors.CodeUnauthorized),
		derrors.HasCode(err, derrors.CodeConflict),
		derrors.HasCode(err, derrors.CodeValidation):
		return err
	default:
		return derrors.Wrap(err, derrors.CodeInternal, "gig store failure")
	}
}
