package retrieval

import (
	"context"
	"sync"

	"github.com/whatthegovdoin/govlens/internal/domain"
	domdoc "github.com/whatthegovdoin/govlens/internal/domain/document"
)

type mockStore struct {
	mu    sync.Mutex
	docs  map[domain.Corpus][]domdoc.Document
	errs  map[domain.Corpus]error
	calls int
}

func (m *mockStore) ListDocuments(_ context.Context, c domain.Corpus) ([]domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.errs[c]; err != nil {
		return nil, err
	}
	return m.docs[c], nil
}

type mockEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func fixtureStore() *mockStore {
	return &mockStore{
		docs: map[domain.Corpus][]domdoc.Document{
			domain.CorpusArticles: {
				domdoc.Reconstruct(1, domain.CorpusArticles, "Steel tariffs", "a1", []float32{1, 0}),
				domdoc.Reconstruct(2, domain.CorpusArticles, "Farm aid", "a2", []float32{0, 1}),
				domdoc.Reconstruct(3, domain.CorpusArticles, "Unembedded", "a3", nil),
			},
			domain.CorpusExecutiveOrders: {
				domdoc.Reconstruct(10, domain.CorpusExecutiveOrders, "EO 10", "e10", []float32{0.6, 0.8}),
			},
		},
		errs: map[domain.Corpus]error{},
	}
}
