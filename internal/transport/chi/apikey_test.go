package chi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func keyCheckedHandler(t *testing.T) (http.Handler, *int) {
	t.Helper()
	reached := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyMiddleware(zap.NewNop())(next), &reached
}

func TestAPIKeyMiddleware_MissingKey(t *testing.T) {
	handler, reached := keyCheckedHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "Missing API key in request headers" {
		t.Errorf("error = %q", body.Error)
	}
	if *reached != 0 {
		t.Error("handler must not run without a key")
	}
}

func TestAPIKeyMiddleware_KeyShape(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"too short", "abc", false},
		{"19 chars", strings.Repeat("a", 19), false},
		{"20 chars", strings.Repeat("a", 20), true},
		{"50 chars", strings.Repeat("a", 50), true},
		{"51 chars", strings.Repeat("a", 51), false},
		{"mixed alnum", "abcDEF1234567890abcDEF1234567890", true},
		{"hyphenated", "abcd-efgh-ijkl-mnop-qrst", false},
		{"embedded space", "abcdefghij klmnopqrst", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, reached := keyCheckedHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/query", nil)
			req.Header.Set("X-Api-Key", tt.key)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.ok {
				if rec.Code != http.StatusOK {
					t.Fatalf("status = %d, want 200", rec.Code)
				}
				if *reached != 1 {
					t.Error("handler should have run")
				}
				return
			}

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			body := decodeError(t, rec)
			if body.Error != "Invalid API key format" {
				t.Errorf("error = %q", body.Error)
			}
			if *reached != 0 {
				t.Error("handler must not run with a malformed key")
			}
		})
	}
}

func TestAPIKeyMiddleware_HeaderNameIsCaseInsensitive(t *testing.T) {
	handler, reached := keyCheckedHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	req.Header.Set("x-api-key", testAPIKey)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *reached != 1 {
		t.Error("handler should have run")
	}
}

func TestAPIKeyMiddleware_OptionsBypass(t *testing.T) {
	handler, reached := keyCheckedHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *reached != 1 {
		t.Error("preflight must pass through without a key")
	}
}

func TestAPIKeyMiddleware_ExemptPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			handler, reached := keyCheckedHandler(t)

			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if *reached != 1 {
				t.Error("exempt path should pass through without a key")
			}
		})
	}
}
