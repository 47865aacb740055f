package briefing

import (
	"context"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/usecase/retrieval"
)

// Retriever finds the closest documents of both corpora.
type Retriever interface {
	Bundle(ctx context.Context, queryText string, topK int) (retrieval.Bundle, error)
}

// Summarizer adds a synopsis to each match.
type Summarizer interface {
	SummarizeEach(ctx context.Context, c domain.Corpus, matches []match.Match) []match.SynopsisResult
}

// Composer writes the final narrative.
type Composer interface {
	Compose(ctx context.Context, queryText string, articles, executiveOrders []match.SynopsisResult) (string, error)
}
