// Package generation decorates the LLM client with budget enforcement and usage accounting.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/logger"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}

// InstrumentedGenerator wraps a Generator with a token budget and request usage accounting.
type InstrumentedGenerator struct {
	inner  domain.Generator
	model  string
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumentedGenerator wraps inner. budget may be nil.
func NewInstrumentedGenerator(inner domain.Generator, model string, budget BudgetChecker, logger *zap.Logger) *InstrumentedGenerator {
	return &InstrumentedGenerator{inner: inner, model: model, budget: budget, logger: logger}
}

// Generate checks the budget, calls the model and records consumed tokens.
func (g *InstrumentedGenerator) Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error) {
	log := logger.FromContextOr(ctx, g.logger).With(zap.String("model", g.model))

	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			log.Warn("LLM budget exhausted", zap.Error(err))
			return domain.Generation{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	gen, err := g.inner.Generate(ctx, p)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("generate: %w", err)
	}

	if g.budget != nil {
		g.budget.Record(int64(gen.TotalTokens))
	}
	domain.UsageFromContext(ctx).AddLLMTokens(gen.TotalTokens)

	log.Debug("LLM request completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", gen.PromptTokens),
		zap.Int("completion_tokens", gen.CompletionTokens),
	)
	return gen, nil
}

// HealthCheck delegates to inner if it supports health checks.
func (g *InstrumentedGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}
