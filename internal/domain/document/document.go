package document

import (
	"fmt"

	"github.com/whatthegovdoin/govlens/internal/domain"
)

// Placeholder values used when the store holds a document without the field.
const (
	DefaultLabel         = "Unnamed"
	DefaultArticleText   = "No summary"
	DefaultExecutiveText = "No order text"
)

// Document is one corpus entry (immutable value object).
type Document struct {
	id        int64
	corpus    domain.Corpus
	label     string
	text      string
	embedding []float32
}

// New validates and creates a Document. A nil embedding is allowed:
// such documents are stored but never ranked.
func New(id int64, corpus domain.Corpus, label, text string, embedding []float32) (Document, error) {
	if id <= 0 {
		return Document{}, fmt.Errorf("%w: document id must be positive, got %d", domain.ErrInvalidArgument, id)
	}
	if _, err := domain.ParseCorpus(string(corpus)); err != nil {
		return Document{}, err
	}
	return Reconstruct(id, corpus, label, text, embedding), nil
}

// Reconstruct creates a Document without validation (storage hydration).
// Missing label and text get deterministic placeholders.
func Reconstruct(id int64, corpus domain.Corpus, label, text string, embedding []float32) Document {
	if label == "" {
		label = DefaultLabel
	}
	if text == "" {
		text = DefaultText(corpus)
	}
	return Document{id: id, corpus: corpus, label: label, text: text, embedding: embedding}
}

// DefaultText returns the text placeholder for a corpus.
func DefaultText(c domain.Corpus) string {
	if c == domain.CorpusExecutiveOrders {
		return DefaultExecutiveText
	}
	return DefaultArticleText
}

// ID returns the document identifier.
func (d *Document) ID() int64 { return d.id }

// Corpus returns the corpus the document belongs to.
func (d *Document) Corpus() domain.Corpus { return d.corpus }

// Label returns the display title.
func (d *Document) Label() string { return d.label }

// Text returns the document body used for embedding and synopses.
func (d *Document) Text() string { return d.text }

// Embedding returns the stored vector, nil if the document was never embedded.
func (d *Document) Embedding() []float32 { return d.embedding }

// HasEmbedding reports whether the document can take part in ranking.
func (d *Document) HasEmbedding() bool { return len(d.embedding) > 0 }
