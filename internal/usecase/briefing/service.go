// Package briefing runs the summarization pipeline: retrieve, summarize each source, compose.
package briefing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/logger"
)

// DefaultTopK is the number of sources per corpus fed to a briefing.
const DefaultTopK = 10

// Response is a finished briefing with the sources it was built from.
type Response struct {
	Narrative       string
	Articles        []match.SynopsisResult
	ExecutiveOrders []match.SynopsisResult
	Failures        []domain.CorpusFailure
}

// Service wires the pipeline stages.
type Service struct {
	retriever  Retriever
	summarizer Summarizer
	composer   Composer
	topK       int
}

// New creates the briefing service. topK <= 0 selects DefaultTopK.
func New(retriever Retriever, summarizer Summarizer, composer Composer, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{retriever: retriever, summarizer: summarizer, composer: composer, topK: topK}
}

// Summarize answers a free-text concern with a narrative grounded in the
// closest articles and executive orders. The narrative call starts only
// after every synopsis has finished or given up.
func (s *Service) Summarize(ctx context.Context, queryText string) (Response, error) {
	start := time.Now()

	b, err := s.retriever.Bundle(ctx, queryText, s.topK)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve sources: %w", err)
	}

	var arts, eos []match.SynopsisResult
	var g errgroup.Group
	g.Go(func() error {
		arts = s.summarizer.SummarizeEach(ctx, domain.CorpusArticles, b.Articles)
		return nil
	})
	g.Go(func() error {
		eos = s.summarizer.SummarizeEach(ctx, domain.CorpusExecutiveOrders, b.ExecutiveOrders)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Response{}, err //nolint:wrapcheck // request canceled
	}

	narrative, err := s.composer.Compose(ctx, queryText, arts, eos)
	if err != nil {
		return Response{}, fmt.Errorf("compose narrative: %w", err)
	}

	logger.FromContext(ctx).Info("Briefing composed",
		zap.Int("articles", len(arts)),
		zap.Int("executive_orders", len(eos)),
		zap.Int("failures", len(b.Failures)),
		zap.Duration("duration", time.Since(start)),
	)

	return Response{
		Narrative:       narrative,
		Articles:        arts,
		ExecutiveOrders: eos,
		Failures:        b.Failures,
	}, nil
}
