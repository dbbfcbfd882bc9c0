package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "giggate/pkg/domain"
	"giggate/pkg/requestcontext"
)

// TokenValidator validates bearer tokens and returns the wallet identity they
// were issued for.
type TokenValidator interface {
	ValidateToken(tokenString string) (id.Identity, error)
}

// RequireIdentity rejects requests without a valid bearer token. The
// validated identity is placed in the request context for handlers.
func RequireIdentity(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFromHeader(r, validator, logger)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"missing or invalid bearer token"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalIdentity resolves the identity when a valid token is present but
// lets anonymous requests through. Eligibility evaluation needs this: an
// unauthenticated caller gets a no_identity decision, not a 401.
func OptionalIdentity(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, ok := identityFromHeader(r, validator, logger); ok {
				r = r.WithContext(requestcontext.WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromHeader(r *http.Request, validator TokenValidator, logger *slog.Logger) (id.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	identity, err := validator.ValidateToken(token)
	if err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "invalid bearer token",
				"error", err,
				"request_id", requestcontext.RequestID(r.Context()),
			)
		}
		return "", false
	}
	return identity, true
}
