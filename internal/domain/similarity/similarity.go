// Package similarity ranks corpus documents against a query vector by cosine similarity.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/document"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
)

// Cosine returns dot(a, b) / (|a| * |b|) computed in float64.
// Returns 0 when either norm is zero or the dimensions differ. The result is clamped into [-1, 1].
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Rank scores every candidate against query and returns the topK best, highest first.
// Candidates with no embedding, a zero-magnitude embedding or a dimension different
// from the query are skipped. Ties break by ascending document id.
func Rank(query []float32, candidates []document.Document, topK int) ([]match.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}

	type scored struct {
		doc   *document.Document
		score float64
	}

	qNorm := magnitude(query)
	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		d := &candidates[i]
		v := d.Embedding()
		if len(v) == 0 || len(v) != len(query) || magnitude(v) == 0 {
			continue
		}
		var score float64
		if qNorm != 0 {
			score = Cosine(query, v)
		}
		ranked = append(ranked, scored{doc: d, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].doc.ID() < ranked[j].doc.ID()
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]match.Match, len(ranked))
	for i, s := range ranked {
		out[i] = match.New(s.doc.ID(), s.doc.Corpus(), s.doc.Label(), s.doc.Text(), s.score)
	}
	return out, nil
}
