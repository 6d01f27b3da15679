package chi

import (
	"net/http"
	"regexp"

	"go.uber.org/zap"
)

// apiKeyHeader is the header carrying the caller's key. net/http header
// lookup is case-insensitive, matching gateways that lowercase header names.
const apiKeyHeader = "X-Api-Key"

// keyShape is what a plausible API key looks like: 20 to 50 alphanumerics.
var keyShape = regexp.MustCompile(`^[A-Za-z0-9]{20,50}$`)

// exemptPaths are routes that bypass the key check (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyMiddleware rejects requests whose API key header is absent or
// implausibly shaped. The authoritative key check happens in the gateway in
// front of this service; this is a second line of defense that also logs key
// usage. CORS preflight always bypasses the check; do not reorder.
func APIKeyMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(apiKeyHeader)
			if key == "" {
				logger.Warn("api key missing")
				writeError(w, http.StatusUnauthorized, "Missing API key in request headers")
				return
			}

			if !keyShape.MatchString(key) {
				logger.Warn("api key format rejected", zap.Int("length", len(key)))
				writeError(w, http.StatusUnauthorized, "Invalid API key format")
				return
			}

			// First 8 characters only; never log the full key.
			logger.Info("api key used", zap.String("key_prefix", key[:8]))

			next.ServeHTTP(w, r)
		})
	}
}
