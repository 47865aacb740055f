// Package narrative composes the final briefing from the retrieved sources.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/logger"
)

const (
	// DefaultTimeout bounds the final LLM call.
	DefaultTimeout = 120 * time.Second
	// DefaultFallbackRunes caps raw text used in place of a missing synopsis.
	DefaultFallbackRunes = 1000
)

const systemPrompt = `You are a political assistant. The user has shared a personal or professional concern, or a political issue.

Use the attached articles and executive orders to explain how recent political developments may affect them. Base your answer only on those documents. If the input is a political issue rather than a personal concern, summarize that issue with respect to the documents.

Respond in Markdown using exactly these level-two sections, in this order:

## Issue Summary
A short summary of the user's situation or the issue.

## Key Implications
A bulleted list of specific ways the developments may affect the user.

## Policy Context
A "Relevant Articles" and a "Relevant Executive Orders" subsection, one line per source as **Title:** summary.

## Recommendations
A bulleted list covering sources to follow, actions to consider and ways to engage locally.

## Supporting Sources
A bulleted list of the article and executive order titles you relied on.

Write clearly and professionally, adapting your tone to the user's context. Do not mention that you are an AI model. Never write "null" for missing information.`

// Generator is the local interface for the LLM client.
type Generator interface {
	Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error)
}

// Config tunes the composer.
type Config struct {
	Timeout       time.Duration
	FallbackRunes int
}

// Composer issues the single final LLM call of a briefing.
type Composer struct {
	gen           Generator
	timeout       time.Duration
	fallbackRunes int
	logger        *zap.Logger
}

// NewComposer creates a composer.
func NewComposer(gen Generator, cfg Config, logger *zap.Logger) *Composer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FallbackRunes <= 0 {
		cfg.FallbackRunes = DefaultFallbackRunes
	}
	return &Composer{gen: gen, timeout: cfg.Timeout, fallbackRunes: cfg.FallbackRunes, logger: logger}
}

// Compose returns the model output verbatim. Any failure of the call is
// reported as domain.ErrGenerationFailed, except the caller going away,
// which returns the caller's context error.
func (c *Composer) Compose(ctx context.Context, queryText string, articles, executiveOrders []match.SynopsisResult) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gen, err := c.gen.Generate(callCtx, c.Prompt(queryText, articles, executiveOrders))
	if err != nil {
		log := logger.FromContextOr(ctx, c.logger)
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("Narrative generation abandoned", zap.Error(err))
			return "", ctxErr //nolint:wrapcheck // caller's own context error
		}
		log.Error("Narrative generation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(gen.Text) == "" {
		return "", fmt.Errorf("%w: empty narrative", domain.ErrGenerationFailed)
	}
	return gen.Text, nil
}

// Prompt builds the final request: fixed instructions, the query, then each
// source as "label: synopsis", with a text snippet when the synopsis is missing.
func (c *Composer) Prompt(queryText string, articles, executiveOrders []match.SynopsisResult) domain.Prompt {
	var b strings.Builder
	b.WriteString(queryText)
	c.writeSources(&b, "Relevant articles", articles)
	c.writeSources(&b, "Relevant executive orders", executiveOrders)
	return domain.Prompt{System: systemPrompt, User: b.String()}
}

func (c *Composer) writeSources(b *strings.Builder, heading string, rs []match.SynopsisResult) {
	if len(rs) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(heading)
	b.WriteString(":")
	for i := range rs {
		b.WriteString("\n\n")
		b.WriteString(rs[i].Label())
		b.WriteString(": ")
		b.WriteString(rs[i].Digest(c.fallbackRunes))
	}
}
