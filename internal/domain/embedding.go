package domain

import (
	"context"
	"fmt"
	"strings"
)

// KeyPrefix namespaces every key this service writes to the key-value store.
const KeyPrefix = "govlens:"

// DefaultDimensions matches all-MiniLM-L6-v2, the model the corpora were embedded with.
const DefaultDimensions = 384

// Embedder is the shared text vectorization contract between layers.
// Implementations must be deterministic for a given text and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// InstructionEmbedder is a domain decorator that prepends instruction text before embedding.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// HealthCheck delegates to inner if it supports health checks.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}

// BlankTextEmbedder answers blank text with the zero vector instead of calling the model.
// It must sit outside InstructionEmbedder, otherwise the instruction makes the text non-blank.
type BlankTextEmbedder struct {
	inner      Embedder
	dimensions int
}

// NewBlankTextEmbedder wraps inner. dimensions is the length of the zero vector.
func NewBlankTextEmbedder(inner Embedder, dimensions int) *BlankTextEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &BlankTextEmbedder{inner: inner, dimensions: dimensions}
}

// Embed returns a zero vector for blank text and delegates otherwise.
func (e *BlankTextEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return EmbeddingResult{Embedding: make([]float32, e.dimensions)}, nil
	}
	return e.inner.Embed(ctx, text) //nolint:wrapcheck // pass-through decorator
}

// HealthCheck delegates to inner if it supports health checks.
func (e *BlankTextEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}
