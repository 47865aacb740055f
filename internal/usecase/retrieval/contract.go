package retrieval

import (
	"context"

	"github.com/whatthegovdoin/govlens/internal/domain"
	domdoc "github.com/whatthegovdoin/govlens/internal/domain/document"
)

// DocumentStore lists every document of one corpus.
type DocumentStore interface {
	ListDocuments(ctx context.Context, c domain.Corpus) ([]domdoc.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
