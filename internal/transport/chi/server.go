// Package chi exposes the govlens HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	healthuc "github.com/whatthegovdoin/govlens/internal/usecase/health"
	usageuc "github.com/whatthegovdoin/govlens/internal/usecase/usage"
	"github.com/whatthegovdoin/govlens/internal/version"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Limits bounds query parameters and response text.
type Limits struct {
	DefaultTopK  int
	MaxTopK      int
	SnippetRunes int
}

// Server holds the HTTP handlers.
type Server struct {
	retriever     Retriever
	briefer       Briefer
	issues        Issues
	usage         UsageReporter
	health        HealthChecker
	limits        Limits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retriever Retriever,
	briefer Briefer,
	issues Issues,
	usage UsageReporter,
	health HealthChecker,
	limits Limits,
) *Server {
	if limits.DefaultTopK <= 0 {
		limits.DefaultTopK = 5
	}
	if limits.MaxTopK < limits.DefaultTopK {
		limits.MaxTopK = limits.DefaultTopK
	}
	return &Server{
		retriever:     retriever,
		briefer:       briefer,
		issues:        issues,
		usage:         usage,
		health:        health,
		limits:        limits,
		errorHandlers: defaultErrorHandlers,
	}
}

// Greeting handles GET /api/.
func (s *Server) Greeting(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, greetingResponse{Message: "Hello World!", Status: "OK"})
}

// SearchArticles handles GET /api/articles.
func (s *Server) SearchArticles(w http.ResponseWriter, r *http.Request) {
	s.searchCorpus(w, r, s.retriever.Articles)
}

// SearchExecutiveOrders handles GET /api/executive.
func (s *Server) SearchExecutiveOrders(w http.ResponseWriter, r *http.Request) {
	s.searchCorpus(w, r, s.retriever.ExecutiveOrders)
}

func (s *Server) searchCorpus(
	w http.ResponseWriter,
	r *http.Request,
	search func(ctx context.Context, queryText string, topK int) ([]match.Match, error),
) {
	q, topK, err := s.queryParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ms, err := search(ctx, q, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, matchesToResponse(ms, s.limits.SnippetRunes))
}

// Biography handles GET /api/biography.
func (s *Server) Biography(w http.ResponseWriter, r *http.Request) {
	q, topK, err := s.queryParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	b, err := s.retriever.Bundle(ctx, q, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, biographyResponse{
		Articles:        matchesToResponse(b.Articles, s.limits.SnippetRunes),
		ExecutiveOrders: matchesToResponse(b.ExecutiveOrders, s.limits.SnippetRunes),
		Failures:        failuresToResponse(b.Failures),
	})
}

// Summarize handles POST /api/summarize.
func (s *Server) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	q := req.Prompt
	if q == "" {
		q = req.QueryText
	}
	if strings.TrimSpace(q) == "" {
		s.handleDomainError(w, r, fmt.Errorf("%w: missing 'prompt' in request body", domain.ErrInvalidArgument))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.briefer.Summarize(ctx, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, summarizeResponse{
		LLMResponse:     resp.Narrative,
		Articles:        synopsesToResponse(resp.Articles, s.limits.SnippetRunes),
		ExecutiveOrders: synopsesToResponse(resp.ExecutiveOrders, s.limits.SnippetRunes),
		Failures:        failuresToResponse(resp.Failures),
	})
}

// ListIssues handles GET /api/issues.
func (s *Server) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.issues.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]issueJSON, len(issues))
	for i := range issues {
		items[i] = issueToJSON(&issues[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// ReplaceIssue handles POST /api/issues.
func (s *Server) ReplaceIssue(w http.ResponseWriter, r *http.Request) {
	var req replaceIssueRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if _, err := s.issues.Replace(r.Context(), in); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Issue successfully replaced."})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.usage.GetReport(r.Context(), period)))
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

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// queryParams reads query_text and top_k. top_k defaults to Limits.DefaultTopK.
// Emptiness of query_text is left to the retrieval layer.
func (s *Server) queryParams(r *http.Request) (string, int, error) {
	q := r.URL.Query()
	topK := s.limits.DefaultTopK
	if raw := q.Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", 0, fmt.Errorf("%w: top_k must be an integer, got %q", domain.ErrInvalidArgument, raw)
		}
		if n > s.limits.MaxTopK {
			return "", 0, fmt.Errorf("%w: top_k must not exceed %d", domain.ErrInvalidArgument, s.limits.MaxTopK)
		}
		topK = n
	}
	return q.Get("query_text"), topK, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", domain.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: invalid request body: %s", domain.ErrInvalidArgument, err.Error())
	}
	return nil
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if n, ok := usage.EmbeddingTokens(); ok {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(n))
	}
	if n := usage.LLMTokens(); n > 0 {
		w.Header().Set("X-LLM-Tokens", strconv.Itoa(n))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
