package briefing

import (
	"context"
	"sync"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/usecase/retrieval"
)

type mockRetriever struct {
	bundle retrieval.Bundle
	err    error
	topK   int
}

func (m *mockRetriever) Bundle(_ context.Context, _ string, topK int) (retrieval.Bundle, error) {
	m.topK = topK
	return m.bundle, m.err
}

// mockSummarizer gives every match the synopsis "syn <label>" except failIDs.
type mockSummarizer struct {
	mu      sync.Mutex
	failIDs map[int64]bool
	corpora []domain.Corpus
	onCall  func()
}

func (m *mockSummarizer) SummarizeEach(_ context.Context, c domain.Corpus, ms []match.Match) []match.SynopsisResult {
	m.mu.Lock()
	m.corpora = append(m.corpora, c)
	m.mu.Unlock()
	if m.onCall != nil {
		m.onCall()
	}
	out := make([]match.SynopsisResult, len(ms))
	for i, x := range ms {
		if m.failIDs[x.DocumentID()] {
			out[i] = match.WithoutSynopsis(x)
			continue
		}
		out[i] = match.WithSynopsis(x, "syn "+x.Label())
	}
	return out
}

type mockComposer struct {
	text     string
	err      error
	calls    int
	articles []match.SynopsisResult
	eos      []match.SynopsisResult
}

func (m *mockComposer) Compose(_ context.Context, _ string, arts, eos []match.SynopsisResult) (string, error) {
	m.calls++
	m.articles, m.eos = arts, eos
	return m.text, m.err
}
