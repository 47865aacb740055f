// Package embedding decorates the query embedder with budget enforcement and usage accounting.
package embedding

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/logger"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}

// InstrumentedEmbedder embeds user queries under a token budget and charges
// the tokens to both the budget and the request's domain.Usage.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner  domain.Embedder
	budget BudgetChecker
	fields []zap.Field
	logger *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. budget may be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:  inner,
		budget: budget,
		fields: []zap.Field{zap.String("provider", provider), zap.String("model", model)},
		logger: logger,
	}
}

// Embed checks the budget, embeds the query and records consumed tokens.
// An exhausted budget never reaches the provider.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	log := logger.FromContextOr(ctx, p.logger).With(p.fields...)

	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			log.Warn("Embedding budget exhausted", zap.Error(err))
			return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		log.Error("Query embedding failed",
			zap.Int("query_runes", utf8.RuneCountInString(text)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if p.budget != nil {
		p.budget.Record(int64(result.TotalTokens))
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(result.TotalTokens)

	log.Debug("Query embedded",
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck delegates to inner if it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}
