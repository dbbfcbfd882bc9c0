// Package handler exposes the verification state machine over HTTP, including
// the callback endpoint the off-chain center reports decisions to.
package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"giggate/internal/platform/middleware"
	"giggate/internal/verification/center"
	"giggate/internal/verification/models"
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/httputil"
	"giggate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/verification-mocks.go -package=mocks Service

// Service defines the verification operations the HTTP layer depends on.
type Service interface {
	Submit(ctx context.Context, identity id.Identity, level id.VerificationLevel, commitment id.Commitment, deposit id.Wei) (*models.Request, error)
	RequestDecision(ctx context.Context, requestID id.RequestID) error
	RecordDecision(ctx context.Context, requestID id.RequestID, approved bool, verifier, reason string) (*models.Request, error)
	Withdraw(ctx context.Context, requestID id.RequestID, requester id.Identity) (*models.Request, error)
	Current(ctx context.Context, identity id.Identity) (*models.Request, error)
	History(ctx context.Context, identity id.Identity) ([]*models.Request, error)
}

// Handler handles verification endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	validator    middleware.TokenValidator
	centerSecret string
}

func New(service Service, logger *slog.Logger, validator middleware.TokenValidator, centerSecret string) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		validator:    validator,
		centerSecret: centerSecret,
	}
}

// Register mounts the verification routes. Everything except the center
// callback requires a bearer token; the callback authenticates with the
// shared secret instead.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification/requests/{requestID}/callback", h.handleCallback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity(h.validator, h.logger))
		r.Post("/verification/requests", h.handleSubmit)
		r.Post("/verification/requests/{requestID}/decision", h.handleRequestDecision)
		r.Post("/verification/requests/{requestID}/withdraw", h.handleWithdraw)
		r.Get("/verification/current", h.handleCurrent)
		r.Get("/verification/history", h.handleHistory)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	identity := requestcontext.Identity(ctx)
	if identity.IsZero() {
		httputil.WriteError(w, derrors.New(derrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Submit(ctx, identity, req.level, req.commitment, req.deposit)
	if err != nil {
		h.logger.WarnContext(ctx, "verification submission rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) handleRequestDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request id"))
		return
	}

	if err := h.service.RequestDecision(ctx, requestID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The decision process is asynchronous; accepted means enqueued, not
	// resolved.
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	secret := r.Header.Get(center.SecretHeader)
	if h.centerSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.centerSecret)) != 1 {
		h.logger.WarnContext(ctx, "callback with invalid center secret",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, derrors.New(derrors.CodeUnauthorized, "invalid center credentials"))
		return
	}

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CallbackRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	decided, err := h.service.RecordDecision(ctx, requestID, req.Approved, req.Verifier, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "decision callback rejected",
			"verification_request_id", requestID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(decided))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request id"))
		return
	}

	withdrawn, err := h.service.Withdraw(ctx, requestID, requestcontext.Identity(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(withdrawn))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := h.service.Current(ctx, requestcontext.Identity(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if current == nil {
		httputil.WriteError(w, derrors.New(derrors.CodeNotFound, "no verification request submitted"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(current))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := h.service.History(ctx, requestcontext.Identity(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]RequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{Requests: out, Count: len(out)})
}
