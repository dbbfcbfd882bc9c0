package testutil

import (
	"net/http"
	"time"

	id "giggate/pkg/domain"
	"giggate/pkg/requestcontext"
)

// WithIdentity adds an authenticated identity to the request context.
// This simulates what the auth middleware would do for a valid bearer token.
// Invalid addresses are silently ignored and the request stays anonymous.
func WithIdentity(req *http.Request, address string) *http.Request {
	identity, err := id.ParseIdentity(address)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

// WithRequestTime pins the request-scoped clock, so assertions on timestamps
// are deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID adds a correlation id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
