package middleware

import (
	"fmt"
	"net/http"

	"github.com/mssola/useragent"

	"giggate/pkg/requestcontext"
)

// ClientMetadata normalizes the User-Agent into a stable "family/version"
// label before it reaches the audit trail, so raw UA strings never get
// persisted.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.UserAgent()
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ua := useragent.New(raw)
		name, version := ua.Browser()
		label := name
		if version != "" {
			label = fmt.Sprintf("%s/%s", name, version)
		}
		if ua.Bot() {
			label = "bot:" + label
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithUserAgent(r.Context(), label)))
	})
}
