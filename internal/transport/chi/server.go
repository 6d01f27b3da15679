// Package chi is the HTTP transport: routing, the request state machine,
// and response assembly for the query endpoint.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elsinore-cloud/hamletqa/internal/domain"
	"github.com/elsinore-cloud/hamletqa/internal/logger"
	"github.com/elsinore-cloud/hamletqa/internal/question"
	healthuc "github.com/elsinore-cloud/hamletqa/internal/usecase/health"
	queryuc "github.com/elsinore-cloud/hamletqa/internal/usecase/query"
)

// QueryRequest is the inbound body of POST /query.
type QueryRequest struct {
	Question string `json:"question"`
}

// Source is one retrieved document as reported to the caller.
type Source struct {
	Title          string  `json:"title"`
	Distance       float64 `json:"distance"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Metadata carries per-request diagnostics alongside the answer.
type Metadata struct {
	QuestionLength       int    `json:"question_length"`
	SourcesFound         int    `json:"sources_found"`
	ProcessingSuccessful bool   `json:"processing_successful"`
	Timestamp            string `json:"timestamp,omitempty"`
	RequestID            string `json:"request_id,omitempty"`
}

// QueryResponse is the success body of POST /query.
type QueryResponse struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Metadata Metadata `json:"metadata"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Usage   string `json:"usage,omitempty"`
	Support string `json:"support,omitempty"`
}

// Server handles the query endpoint plus health and metrics.
type Server struct {
	query  *queryuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(query *queryuc.Service, health *healthuc.Service, log *zap.Logger) *Server {
	return &Server{query: query, health: health, logger: log}
}

// Preflight handles OPTIONS /query. Always 200; skips the key check, body
// parsing, and validation entirely.
func (s *Server) Preflight(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "CORS preflight response"})
}

// Query handles POST /query: parse body, validate, sanitize, run the
// pipeline, assemble the response. Every failure is classified before it
// reaches the wire.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "question" {
			writeError(w, http.StatusBadRequest, "Question must be a string")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	validated, err := question.Validate(req.Question)
	if err != nil {
		if req.Question == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Usage: "Send POST request with JSON body containing 'question' field",
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sanitized := question.Sanitize(validated)
	questionLength := utf8.RuneCountInString(req.Question)
	log.Info("processing question", zap.Int("question_length", questionLength))

	result, err := s.query.Answer(ctx, sanitized)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	resp := QueryResponse{
		Answer:  result.Answer,
		Sources: buildSources(result.Sources),
		Metadata: Metadata{
			QuestionLength:       questionLength,
			SourcesFound:         len(result.Sources),
			ProcessingSuccessful: true,
			Timestamp:            time.Now().UTC().Format(time.RFC3339),
			RequestID:            chiMiddleware.GetReqID(ctx),
		},
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// handleQueryError maps pipeline failures to statuses: classified upstream
// failures become 503 with the sentinel reason; anything else is logged in
// full and answered with a generic 500 so internal detail never reaches the
// caller.
func (s *Server) handleQueryError(w http.ResponseWriter, err error) {
	if domain.IsUpstream(err) {
		s.logger.Warn("upstream failure", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:  upstreamMessage(err),
			Reason: domain.UpstreamReason(err),
		})
		return
	}

	s.logger.Error("unhandled pipeline error", zap.Error(err), zap.Stack("stacktrace"))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error occurred",
		Support: "Please contact support if this persists",
	})
}

// upstreamMessage picks the user-facing 503 message by pipeline stage.
func upstreamMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrGenerationFailure):
		return "Response generation failed"
	default:
		return "Search service unavailable"
	}
}

// buildSources maps retrieved documents to caller-facing source entries.
// The retrieval layer already defaults missing titles; the fallback here
// covers documents built any other way.
func buildSources(docs []domain.RetrievedDocument) []Source {
	sources := make([]Source, 0, len(docs))
	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "Unknown"
		}
		sources = append(sources, Source{
			Title:          title,
			Distance:       doc.Distance,
			RelevanceScore: doc.RelevanceScore(),
		})
	}
	return sources
}

// writeJSON encodes v without HTML escaping so non-ASCII and quoted source
// text pass through intact.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
