// Package httputil centralizes JSON encoding and domain-error translation for
// HTTP handlers so every endpoint returns the same envelopes.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	derrors "giggate/pkg/domain-errors"
)

// Validatable is implemented by request DTOs that parse and validate
// themselves after JSON decoding.
type Validatable interface {
	Validate() error
}

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[derrors.Code]int{
	derrors.CodeValidation:          http.StatusUnprocessableEntity,
	derrors.CodeBadRequest:          http.StatusBadRequest,
	derrors.CodeNotFound:            http.StatusNotFound,
	derrors.CodeUnauthorized:        http.StatusUnauthorized,
	derrors.CodeConflict:            http.StatusConflict,
	derrors.CodeInvariantViolation:  http.StatusConflict,
	derrors.CodeInvalidLevel:        http.StatusUnprocessableEntity,
	derrors.CodeInsufficientDeposit: http.StatusUnprocessableEntity,
	derrors.CodeUnavailable:         http.StatusServiceUnavailable,
	derrors.CodeInternal:            http.StatusInternalServerError,
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into the standard error envelope.
// Internal errors never leak their message to the caller.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		code = derrors.CodeInternal
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": string(code)}
	if code != derrors.CodeInternal {
		if msg := derrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, status, body)
}

// DecodeAndPrepare decodes the request body into T and runs its validation.
// On failure it writes the error response and returns ok=false so handlers can
// bail with a bare return.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "invalid request body",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request validation failed",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
