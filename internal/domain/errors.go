package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidArgument signals rejected caller input (empty query, non-positive top_k).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable signals a document store or embedding model failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrGenerationError signals a non rate-limit LLM failure.
	ErrGenerationError = errors.New("generation error")
	// ErrGenerationFailed signals that the final narrative could not be produced.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrLLMQuotaExceeded signals an exhausted chat completion budget.
	ErrLLMQuotaExceeded = errors.New("llm quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// Kind is the structured error category reported to callers.
type Kind string

// Error kinds, in matching priority order.
const (
	KindInvalidArgument     Kind = "invalid_argument"
	KindNotFound            Kind = "not_found"
	KindGenerationFailed    Kind = "generation_failed"
	KindRateLimited         Kind = "rate_limited"
	KindGenerationError     Kind = "generation_error"
	KindQuotaExceeded       Kind = "quota_exceeded"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindCanceled            Kind = "canceled"
	KindInternal            Kind = "internal_error"
)

var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidArgument, KindInvalidArgument},
	{ErrNotFound, KindNotFound},
	{ErrGenerationFailed, KindGenerationFailed},
	{ErrRateLimited, KindRateLimited},
	{ErrGenerationError, KindGenerationError},
	{ErrEmbeddingQuotaExceeded, KindQuotaExceeded},
	{ErrLLMQuotaExceeded, KindQuotaExceeded},
	{ErrUpstreamUnavailable, KindUpstreamUnavailable},
	{ErrEmbeddingProviderError, KindUpstreamUnavailable},
}

// KindOf classifies err. Unknown errors map to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kindTable {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}
