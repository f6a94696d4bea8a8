package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	logpkg "github.com/kailas-cloud/haven/internal/logger"
	"github.com/kailas-cloud/haven/internal/usecase/format"
	healthuc "github.com/kailas-cloud/haven/internal/usecase/health"
)

const maxBodyBytes = 16 << 10

// QueryRequest is the body of POST /v1/search and POST /v1/conversation.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the answer to a resolved query.
type QueryResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
	Intent   string `json:"intent"`
}

// OutcomeItem is one entry of GET /v1/outcomes.
type OutcomeItem struct {
	ID           string    `json:"id"`
	Pipeline     string    `json:"pipeline"`
	Query        string    `json:"query"`
	Intent       string    `json:"intent"`
	Path         string    `json:"path"`
	UsedFallback bool      `json:"used_fallback"`
	Score        float64   `json:"score"`
	Error        string    `json:"error,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	At           time.Time `json:"at"`
}

// OutcomeListResponse is the body of GET /v1/outcomes.
type OutcomeListResponse struct {
	Items []OutcomeItem `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server serves the query pipelines over HTTP.
type Server struct {
	search        Resolver
	conversation  Resolver
	outcomes      OutcomeReader
	health        HealthChecker
	unavailable   string
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. outcomes may be nil when the journal is off.
func NewServer(
	search, conversation Resolver,
	outcomes OutcomeReader,
	health HealthChecker,
	hotline format.Hotline,
) *Server {
	s := &Server{
		search:       search,
		conversation: conversation,
		outcomes:     outcomes,
		health:       health,
		unavailable:  unavailableMessage(hotline),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrOutcomesDisabled, http.StatusNotFound, CodeOutcomesDisabled),
		s.fallbackFailedHandler,
	}
	return s
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.SearchPost)
		r.Get("/search", s.SearchGet)
		r.Post("/conversation", s.Conversation)
		r.Get("/outcomes", s.ListOutcomes)
	})
}

// SearchPost handles POST /v1/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	s.resolve(w, r, s.search, req.Query)
}

// SearchGet handles GET /v1/search?q=.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter q: "+err.Error())
		return
	}
	s.resolve(w, r, s.search, q)
}

// Conversation handles POST /v1/conversation.
func (s *Server) Conversation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	s.resolve(w, r, s.conversation, req.Query)
}

// ListOutcomes handles GET /v1/outcomes?limit=.
func (s *Server) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter limit: "+err.Error())
		return
	}
	if s.outcomes == nil {
		s.handleDomainError(w, r, domain.ErrOutcomesDisabled)
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	list, err := s.outcomes.Recent(r.Context(), n)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]OutcomeItem, len(list))
	for i, o := range list {
		items[i] = outcomeToItem(o)
	}
	writeJSON(w, http.StatusOK, OutcomeListResponse{Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request, p Resolver, query string) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := p.Resolve(ctx, query)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Response: resp.Text,
		Source:   string(resp.Source),
		Intent:   string(resp.Intent),
	})
}

// fallbackFailedHandler answers with the static crisis message when no answer could be produced.
func (s *Server) fallbackFailedHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrFallbackFailed) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, s.unavailable)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (QueryRequest, bool) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

func unavailableMessage(h format.Hotline) string {
	if h.Number == "" {
		h = format.DefaultHotline
	}
	if h.Name == "" {
		h.Name = format.DefaultHotline.Name
	}
	return fmt.Sprintf(
		"We could not complete your request right now. If you are in immediate danger, call 911. "+
			"You can reach the %s at %s, available 24/7.", h.Name, h.Number)
}

func outcomeToItem(o domain.Outcome) OutcomeItem {
	return OutcomeItem{
		ID:           o.ID,
		Pipeline:     o.Pipeline,
		Query:        o.Query,
		Intent:       string(o.Intent),
		Path:         string(o.Path),
		UsedFallback: o.UsedFallback,
		Score:        o.Score,
		Error:        o.Error,
		DurationMs:   o.Duration.Milliseconds(),
		At:           o.At.UTC(),
	}
}
