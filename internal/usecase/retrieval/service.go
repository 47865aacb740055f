package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/logger"
	"github.com/whatthegovdoin/govlens/internal/metrics"
)

// Bundle holds the ranked matches of both corpora. A failed corpus has an
// empty (non-nil) slice and an entry in Failures.
type Bundle struct {
	Articles        []match.Match
	ExecutiveOrders []match.Match
	Failures        []domain.CorpusFailure
}

// Service runs the per-corpus retrievers for one query.
type Service struct {
	embed      Embedder
	retrievers map[domain.Corpus]*Retriever
	maxRunes   int
}

// New creates the retrieval orchestrator over both corpora.
func New(store DocumentStore, embed Embedder, maxQueryRunes int) *Service {
	s := &Service{
		embed:      embed,
		retrievers: make(map[domain.Corpus]*Retriever, len(domain.Corpora)),
		maxRunes:   maxQueryRunes,
	}
	for _, c := range domain.Corpora {
		s.retrievers[c] = NewRetriever(c, store, embed, maxQueryRunes)
	}
	if s.maxRunes <= 0 {
		s.maxRunes = DefaultMaxQueryRunes
	}
	return s
}

// Articles returns the topK closest news articles.
func (s *Service) Articles(ctx context.Context, queryText string, topK int) ([]match.Match, error) {
	return s.retrievers[domain.CorpusArticles].Retrieve(ctx, queryText, topK)
}

// ExecutiveOrders returns the topK closest executive orders.
func (s *Service) ExecutiveOrders(ctx context.Context, queryText string, topK int) ([]match.Match, error) {
	return s.retrievers[domain.CorpusExecutiveOrders].Retrieve(ctx, queryText, topK)
}

// Bundle embeds the query once and searches both corpora concurrently.
// It fails only on invalid input or a canceled caller. Any other failure,
// including the query embedding, is recorded per corpus in the result.
func (s *Service) Bundle(ctx context.Context, queryText string, topK int) (Bundle, error) {
	if err := validate(queryText, topK, s.maxRunes); err != nil {
		return Bundle{}, err
	}

	results := make([][]match.Match, len(domain.Corpora))
	errs := make([]error, len(domain.Corpora))

	emb, err := s.embed.Embed(ctx, queryText)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return Bundle{}, err
	case err != nil && ctx.Err() != nil:
		return Bundle{}, ctx.Err() //nolint:wrapcheck // caller's own context error
	case err != nil:
		// Both corpora need the same query vector, so each records the failure.
		err = fmt.Errorf("embed query: %w: %w", domain.ErrUpstreamUnavailable, err)
		for i := range errs {
			errs[i] = err
		}
	default:
		var g errgroup.Group
		for i, c := range domain.Corpora {
			r := s.retrievers[c]
			g.Go(func() error {
				results[i], errs[i] = r.RetrieveVector(ctx, emb.Embedding, topK)
				return nil // failures are per corpus, never abort the sibling
			})
		}
		_ = g.Wait()
	}

	log := logger.FromContext(ctx)
	var b Bundle
	for i, c := range domain.Corpora {
		ms := results[i]
		if errs[i] != nil {
			f := domain.NewCorpusFailure(c, errs[i])
			b.Failures = append(b.Failures, f)
			metrics.CorpusFailuresTotal.WithLabelValues(string(c), string(f.Kind)).Inc()
			log.Warn("Corpus retrieval failed", zap.String("corpus", string(c)), zap.Error(errs[i]))
			ms = []match.Match{}
		}
		switch c {
		case domain.CorpusArticles:
			b.Articles = ms
		case domain.CorpusExecutiveOrders:
			b.ExecutiveOrders = ms
		}
	}
	return b, nil
}
