// Package synopsis produces one short LLM synopsis per retrieved document.
package synopsis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/logger"
	"github.com/whatthegovdoin/govlens/internal/metrics"
)

const (
	// DefaultConcurrency bounds in-flight synopsis calls across all requests.
	DefaultConcurrency = 4
	// DefaultItemTimeout is the budget of one synopsis, retries included.
	DefaultItemTimeout = 60 * time.Second

	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeCanceled = "canceled"
)

// Config tunes the synopsis stage.
type Config struct {
	Concurrency   int
	RatePerSecond float64 // <= 0 disables rate limiting
	Burst         int
	ItemTimeout   time.Duration
	Backoff       Backoff
}

// Stage runs synopsis calls on a shared worker pool behind a shared rate limiter.
type Stage struct {
	gen         Generator
	pool        *ants.Pool
	limiter     *rate.Limiter
	backoff     Backoff
	itemTimeout time.Duration
	logger      *zap.Logger
}

// New creates the stage and its worker pool. Call Release on shutdown.
func New(gen Generator, cfg Config, logger *zap.Logger) (*Stage, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}

	pool, err := ants.NewPool(cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("create synopsis pool: %w", err)
	}

	limit, burst := rate.Inf, cfg.Burst
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	if burst <= 0 {
		burst = cfg.Concurrency
	}

	return &Stage{
		gen:         gen,
		pool:        pool,
		limiter:     rate.NewLimiter(limit, burst),
		backoff:     cfg.Backoff.withDefaults(),
		itemTimeout: cfg.ItemTimeout,
		logger:      logger,
	}, nil
}

// Release stops the worker pool.
func (s *Stage) Release() {
	s.pool.Release()
}

// Prompt returns the per-document synopsis request.
func Prompt(c domain.Corpus, text string) domain.Prompt {
	return domain.Prompt{User: "Give a short synopsis of this relevant " + c.Noun() + ": " + text}
}

// SummarizeEach returns one result per match in input order. A failed item
// has no synopsis and does not affect the others. It returns once every
// item has finished or given up.
func (s *Stage) SummarizeEach(ctx context.Context, c domain.Corpus, matches []match.Match) []match.SynopsisResult {
	results := make([]match.SynopsisResult, len(matches))

	var wg sync.WaitGroup
	for i, m := range matches {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.summarize(ctx, c, m)
		})
		if err != nil {
			wg.Done()
			logger.FromContextOr(ctx, s.logger).Warn("Synopsis task rejected", zap.String("corpus", string(c)), zap.Error(err))
			metrics.SynopsesTotal.WithLabelValues(string(c), outcomeFailed).Inc()
			results[i] = match.WithoutSynopsis(m)
		}
	}
	wg.Wait()

	return results
}

func (s *Stage) summarize(ctx context.Context, c domain.Corpus, m match.Match) match.SynopsisResult {
	log := logger.FromContextOr(ctx, s.logger)
	ctx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	prompt := Prompt(c, m.Text())
	var text string
	err := s.backoff.retry(ctx,
		func(ctx context.Context) error {
			if err := s.limiter.Wait(ctx); err != nil {
				return err //nolint:wrapcheck // context error
			}
			gen, err := s.gen.Generate(ctx, prompt)
			if err != nil {
				return err //nolint:wrapcheck // classified by retryable
			}
			text = strings.TrimSpace(gen.Text)
			if text == "" {
				return fmt.Errorf("empty synopsis: %w", domain.ErrGenerationError)
			}
			return nil
		},
		func(err error) bool { return errors.Is(err, domain.ErrRateLimited) },
		func(attempt int, err error) {
			metrics.LLMRetriesTotal.WithLabelValues("synopsis").Inc()
			log.Debug("Synopsis rate limited, backing off",
				zap.Int64("document_id", m.DocumentID()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		},
	)

	if err != nil {
		outcome := outcomeFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeCanceled
		}
		metrics.SynopsesTotal.WithLabelValues(string(c), outcome).Inc()
		log.Warn("Synopsis failed",
			zap.String("corpus", string(c)),
			zap.Int64("document_id", m.DocumentID()),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return match.WithoutSynopsis(m)
	}

	metrics.SynopsesTotal.WithLabelValues(string(c), outcomeOK).Inc()
	return match.WithSynopsis(m, text)
}
