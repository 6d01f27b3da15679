package chi

import "net/http"

// fixedHeaders is attached to every response: permissive CORS for the single
// browser-facing endpoint plus defensive headers.
var fixedHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Api-Key",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"X-XSS-Protection":             "1; mode=block",
}

// ResponseHeadersMiddleware sets the fixed header set before any handler
// writes. Content-Type is set per-response by writeJSON.
func ResponseHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range fixedHeaders {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
