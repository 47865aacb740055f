package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects token usage for a single HTTP request.
// The handler puts a pointer into the context before calling the service;
// services add tokens after each external call; the handler reads it for response headers.
// Synopsis calls run concurrently, so updates are guarded.
type Usage struct {
	mu              sync.Mutex
	embeddingTokens int
	llmTokens       int
	embeddingUsed   bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records tokens consumed by the embedding model.
// A call with 0 tokens (cache hit, blank text) still marks the request as having embedded.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.embeddingUsed = true
	u.mu.Unlock()
}

// AddLLMTokens records tokens consumed by LLM calls.
func (u *Usage) AddLLMTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.llmTokens += n
	u.mu.Unlock()
}

// EmbeddingTokens returns tokens consumed by embedding calls.
func (u *Usage) EmbeddingTokens() (int, bool) {
	if u == nil {
		return 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens, u.embeddingUsed
}

// LLMTokens returns tokens consumed by LLM calls.
func (u *Usage) LLMTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.llmTokens
}
