// Package handler exposes eligibility evaluation over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giggate/internal/eligibility/models"
	"giggate/internal/platform/middleware"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/httputil"
	"giggate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/eligibility-mocks.go -package=mocks Service

// Service defines the evaluation operation the HTTP layer depends on.
type Service interface {
	Evaluate(ctx context.Context, identity id.Identity, gigID id.GigID) (models.Decision, error)
}

// Handler handles eligibility endpoints.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(service Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts the eligibility route. Identity is optional: anonymous
// callers get a no_identity decision, not a 401.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalIdentity(h.validator, h.logger))
		r.Get("/eligibility/gigs/{gigID}", h.handleEvaluate)
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gigID, err := id.ParseGigID(chi.URLParam(r, "gigID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid gig id"))
		return
	}

	decision, err := h.service.Evaluate(ctx, requestcontext.Identity(ctx), gigID)
	if err != nil {
		if !derrors.HasCode(err, derrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "eligibility evaluation failed",
				"request_id", requestcontext.RequestID(ctx),
				"gig_id", gigID.String(),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toDecisionResponse(decision))
}
