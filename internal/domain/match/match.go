package match

import "github.com/whatthegovdoin/govlens/internal/domain"

// Match is one ranked document (RankedMatch). Ordering lives in the slice, not here.
type Match struct {
	documentID int64
	corpus     domain.Corpus
	label      string
	text       string
	similarity float64
}

// New creates a match.
func New(documentID int64, corpus domain.Corpus, label, text string, similarity float64) Match {
	return Match{
		documentID: documentID,
		corpus:     corpus,
		label:      label,
		text:       text,
		similarity: similarity,
	}
}

// DocumentID returns the matched document id.
func (m *Match) DocumentID() int64 { return m.documentID }

// Corpus returns the corpus the document came from.
func (m *Match) Corpus() domain.Corpus { return m.corpus }

// Label returns the document title.
func (m *Match) Label() string { return m.label }

// Text returns the full document text.
func (m *Match) Text() string { return m.text }

// Similarity returns the cosine similarity to the query, in [-1, 1].
func (m *Match) Similarity() float64 { return m.similarity }

// Snippet returns the text cut to at most maxRunes runes. maxRunes <= 0 disables the cut.
func (m *Match) Snippet(maxRunes int) string {
	return Truncate(m.text, maxRunes)
}

// Truncate cuts s to at most maxRunes runes, appending an ellipsis when it cuts.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
