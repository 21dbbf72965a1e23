// Package middleware provides HTTP middleware for the gateway.
package middleware

import (
	"net/http"

	"github.com/appsift/appstore-gateway/internal/httputil"
	"github.com/appsift/appstore-gateway/pkg/logger"
)

// APIKeyHeader carries the caller's credential.
const APIKeyHeader = "X-API-Key"

// unauthorizedMessage is the exact body clients depend on.
const unauthorizedMessage = "Unauthorized - Invalid API Key"

// KeyAuth rejects requests whose API key does not match the configured
// secret. The comparison is plain case-sensitive string equality.
type KeyAuth struct {
	apiKey    string
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewKeyAuth creates the key-auth middleware. Paths in skipPaths (such as
// /health and /metrics) bypass authentication.
func NewKeyAuth(apiKey string, log *logger.Logger, skipPaths []string) *KeyAuth {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &KeyAuth{
		apiKey:    apiKey,
		log:       log,
		skipPaths: skip,
	}
}

// Handler returns the middleware handler.
func (m *KeyAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(APIKeyHeader)
		if key == "" || key != m.apiKey {
			m.log.WithContext(r.Context()).WithFields(map[string]interface{}{
				"path":   r.URL.Path,
				"method": r.Method,
			}).Warn("rejected request with missing or invalid API key")
			httputil.Unauthorized(w, unauthorizedMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}
