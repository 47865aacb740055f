package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/issue"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/usecase/briefing"
	healthuc "github.com/whatthegovdoin/govlens/internal/usecase/health"
	issueuc "github.com/whatthegovdoin/govlens/internal/usecase/issue"
	"github.com/whatthegovdoin/govlens/internal/usecase/retrieval"
	usageuc "github.com/whatthegovdoin/govlens/internal/usecase/usage"
)

// --- Mocks ---

type mockRetriever struct {
	matches []match.Match
	bundle  retrieval.Bundle
	err     error
	gotQ    string
	gotTopK int
}

func (m *mockRetriever) search(ctx context.Context, q string, topK int) ([]match.Match, error) {
	m.gotQ, m.gotTopK = q, topK
	if m.err != nil {
		return nil, m.err
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(7)
	return m.matches, nil
}

func (m *mockRetriever) Articles(ctx context.Context, q string, topK int) ([]match.Match, error) {
	return m.search(ctx, q, topK)
}

func (m *mockRetriever) ExecutiveOrders(ctx context.Context, q string, topK int) ([]match.Match, error) {
	return m.search(ctx, q, topK)
}

func (m *mockRetriever) Bundle(_ context.Context, q string, topK int) (retrieval.Bundle, error) {
	m.gotQ, m.gotTopK = q, topK
	return m.bundle, m.err
}

type mockBriefer struct {
	resp briefing.Response
	err  error
	gotQ string
}

func (m *mockBriefer) Summarize(ctx context.Context, q string) (briefing.Response, error) {
	m.gotQ = q
	if m.err != nil {
		return briefing.Response{}, m.err
	}
	domain.UsageFromContext(ctx).AddLLMTokens(120)
	return m.resp, nil
}

type mockIssues struct {
	issues []issue.Issue
	err    error
	got    issueuc.Input
}

func (m *mockIssues) List(_ context.Context) ([]issue.Issue, error) { return m.issues, m.err }

func (m *mockIssues) Replace(_ context.Context, in issueuc.Input) (issue.Issue, error) {
	m.got = in
	if m.err != nil {
		return issue.Issue{}, m.err
	}
	return issue.Reconstruct(in.ID, in.Title, in.Summary, in.LLMSummary, in.Articles, in.ExecutiveOrders), nil
}

type mockUsage struct{ got usageuc.Period }

func (m *mockUsage) GetReport(_ context.Context, p usageuc.Period) usageuc.Report {
	m.got = p
	return usageuc.Report{Period: p, Budgets: []usageuc.Budget{{Kind: "llm", Limit: 10, Used: 10, Remaining: 0, Exhausted: true}}}
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

type fixture struct {
	retriever *mockRetriever
	briefer   *mockBriefer
	issues    *mockIssues
	usage     *mockUsage
	health    *mockHealth
	handler   http.Handler
}

func newFixture(t *testing.T, cfg RouterConfig) *fixture {
	t.Helper()
	f := &fixture{
		retriever: &mockRetriever{},
		briefer:   &mockBriefer{},
		issues:    &mockIssues{},
		usage:     &mockUsage{},
		health:    &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK}}},
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := NewServer(f.retriever, f.briefer, f.issues, f.usage, f.health, Limits{DefaultTopK: 5, MaxTopK: 20, SnippetRunes: 4})
	f.handler = NewRouter(s, cfg)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func nopLogger() *zap.Logger { return zap.NewNop() }

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, http.NoBody)
}

func serve(f *fixture, req *http.Request) *httptest.ResponseRecorder {
	return serveHandler(f.handler, req)
}

func serveHandler(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
