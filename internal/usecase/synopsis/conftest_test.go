package synopsis

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
)

type mockGenerator struct {
	mu      sync.Mutex
	fn      func(ctx context.Context, p domain.Prompt) (domain.Generation, error)
	prompts []string
}

func (m *mockGenerator) Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, p.User)
	m.mu.Unlock()
	return m.fn(ctx, p)
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func newTestStage(t *testing.T, gen Generator) *Stage {
	t.Helper()
	s, err := New(gen, Config{
		Concurrency: 3,
		ItemTimeout: 2 * time.Second,
		Backoff:     Backoff{Attempts: 4, Base: time.Millisecond, Cap: 4 * time.Millisecond},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func sampleMatches() []match.Match {
	return []match.Match{
		match.New(1, domain.CorpusArticles, "one", "text one", 0.9),
		match.New(2, domain.CorpusArticles, "two", "text two", 0.8),
		match.New(3, domain.CorpusArticles, "three", "text three", 0.7),
	}
}
