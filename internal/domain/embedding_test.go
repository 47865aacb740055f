package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "search_document: ")

	result, err := emb.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "search_document: hello world" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}
	emb := NewInstructionEmbedder(inner, "search_document: ")

	_, err := emb.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	_, err := emb.Embed(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "test" {
		t.Errorf("expected 'test', got %q", inner.got)
	}
}

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	c.calls++
	return EmbeddingResult{Embedding: []float32{1, 2, 3}, PromptTokens: 2, TotalTokens: 2}, nil
}

func TestBlankTextEmbedder_ZeroVectorWithoutCall(t *testing.T) {
	inner := &countingEmbedder{}
	emb := NewBlankTextEmbedder(inner, 4)

	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := emb.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Embedding) != 4 {
			t.Fatalf("expected 4 dims, got %d", len(res.Embedding))
		}
		for i, v := range res.Embedding {
			if v != 0 {
				t.Errorf("dim %d = %v, want 0", i, v)
			}
		}
	}
	if inner.calls != 0 {
		t.Errorf("expected no model calls, got %d", inner.calls)
	}
}

func TestBlankTextEmbedder_DelegatesNonBlank(t *testing.T) {
	inner := &countingEmbedder{}
	emb := NewBlankTextEmbedder(inner, 0)

	res, err := emb.Embed(context.Background(), "tariffs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(res.Embedding) != 3 {
		t.Errorf("expected delegation, calls=%d dims=%d", inner.calls, len(res.Embedding))
	}
	if emb.dimensions != DefaultDimensions {
		t.Errorf("dimensions = %d, want default %d", emb.dimensions, DefaultDimensions)
	}
}

func TestBlankTextEmbedder_OutsideInstruction(t *testing.T) {
	inner := &countingEmbedder{}
	emb := NewBlankTextEmbedder(NewInstructionEmbedder(inner, "query: "), 2)

	if _, err := emb.Embed(context.Background(), " "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("instruction prefix must not reach the model for blank text")
	}
}
