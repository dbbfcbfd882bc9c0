// Package handler exposes the gig registry over HTTP.
package handler

import (
	"context"
	"iter"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giggate/internal/gig/models"
	gigservice "giggate/internal/gig/service"
	"giggate/internal/platform/middleware"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/httputil"
	"giggate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/gig-mocks.go -package=mocks Service

// Service defines the gig operations the HTTP layer depends on.
type Service interface {
	Create(ctx context.Context, creator id.Identity, title, description string, types []string, bounty id.Wei, minTrustScore id.TrustScore) (*models.Gig, error)
	Get(ctx context.Context, gigID id.GigID) (*models.Gig, error)
	ListActive(ctx context.Context, filter gigservice.Filter) (iter.Seq[*models.Gig], error)
	Deactivate(ctx context.Context, gigID id.GigID, requester id.Identity) (*models.Gig, error)
}

// Handler handles gig registry endpoints.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(service Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator,
	}
}

// Register mounts the gig routes. Reads are public; writes require a bearer
// token.
func (h *Handler) Register(r chi.Router) {
	r.Get("/gigs", h.handleList)
	r.Get("/gigs/{gigID}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity(h.validator, h.logger))
		r.Post("/gigs", h.handleCreate)
		r.Post("/gigs/{gigID}/deactivate", h.handleDeactivate)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	creator := requestcontext.Identity(ctx)
	if creator.IsZero() {
		httputil.WriteError(w, derrors.New(derrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateGigRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	gig, err := h.service.Create(ctx, creator, req.Title, req.Description, req.Types, req.bounty, req.minTrustScore)
	if err != nil {
		h.logger.WarnContext(ctx, "gig creation rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toGigResponse(gig))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gigID, err := id.ParseGigID(chi.URLParam(r, "gigID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid gig id"))
		return
	}

	gig, err := h.service.Get(ctx, gigID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGigResponse(gig))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := gigservice.Filter{
		TextQuery: r.URL.Query().Get("q"),
		TypeTag:   r.URL.Query().Get("type"),
	}

	seq, err := h.service.ListActive(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list gigs",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	gigs := make([]GigResponse, 0)
	for gig := range seq {
		gigs = append(gigs, toGigResponse(gig))
	}
	httputil.WriteJSON(w, http.StatusOK, ListGigsResponse{Gigs: gigs, Count: len(gigs)})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	gigID, err := id.ParseGigID(chi.URLParam(r, "gigID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid gig id"))
		return
	}

	gig, err := h.service.Deactivate(ctx, gigID, requestcontext.Identity(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "gig deactivation rejected",
			"request_id", requestID,
			"gig_id", gigID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toGigResponse(gig))
}
