package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/domain/similarity"
	"github.com/whatthegovdoin/govlens/internal/metrics"
)

// DefaultMaxQueryRunes caps query text length.
const DefaultMaxQueryRunes = 4000

// Retriever answers nearest-document queries against one corpus.
type Retriever struct {
	corpus   domain.Corpus
	store    DocumentStore
	embed    Embedder
	maxRunes int
}

// NewRetriever creates a retriever bound to corpus c.
func NewRetriever(c domain.Corpus, store DocumentStore, embed Embedder, maxQueryRunes int) *Retriever {
	if maxQueryRunes <= 0 {
		maxQueryRunes = DefaultMaxQueryRunes
	}
	return &Retriever{corpus: c, store: store, embed: embed, maxRunes: maxQueryRunes}
}

// Corpus returns the corpus this retriever searches.
func (r *Retriever) Corpus() domain.Corpus { return r.corpus }

// Retrieve embeds queryText once and returns the topK closest documents.
// Input errors are reported before any external call.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, topK int) ([]match.Match, error) {
	if err := validate(queryText, topK, r.maxRunes); err != nil {
		return nil, err
	}

	emb, err := r.embed.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%s: embed query: %w: %w", r.corpus, domain.ErrUpstreamUnavailable, err)
	}
	return r.RetrieveVector(ctx, emb.Embedding, topK)
}

// RetrieveVector ranks the corpus against an already embedded query.
func (r *Retriever) RetrieveVector(ctx context.Context, query []float32, topK int) ([]match.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}

	start := time.Now()
	docs, err := r.store.ListDocuments(ctx, r.corpus)
	if err != nil {
		return nil, fmt.Errorf("%s: list documents: %w: %w", r.corpus, domain.ErrUpstreamUnavailable, err)
	}

	matches, err := similarity.Rank(query, docs, topK)
	if err != nil {
		return nil, fmt.Errorf("%s: rank: %w", r.corpus, err)
	}
	metrics.RetrievalDuration.WithLabelValues(string(r.corpus)).Observe(time.Since(start).Seconds())
	return matches, nil
}

func validate(queryText string, topK, maxRunes int) error {
	if strings.TrimSpace(queryText) == "" {
		return fmt.Errorf("%w: query_text is required", domain.ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(queryText); maxRunes > 0 && n > maxRunes {
		return fmt.Errorf("%w: query_text is %d characters, limit is %d", domain.ErrInvalidArgument, n, maxRunes)
	}
	if topK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	return nil
}
