package match

// SynopsisResult is a Match with an optional LLM synopsis.
// A nil synopsis means generation failed for this item; the match is still reported.
type SynopsisResult struct {
	Match
	synopsis *string
}

// WithSynopsis attaches a generated synopsis.
func WithSynopsis(m Match, synopsis string) SynopsisResult {
	return SynopsisResult{Match: m, synopsis: &synopsis}
}

// WithoutSynopsis marks the match as having no synopsis.
func WithoutSynopsis(m Match) SynopsisResult {
	return SynopsisResult{Match: m}
}

// Synopsis returns the synopsis and whether one was produced.
func (r *SynopsisResult) Synopsis() (string, bool) {
	if r.synopsis == nil {
		return "", false
	}
	return *r.synopsis, true
}

// SynopsisPtr returns the synopsis pointer (nil when absent), for JSON encoding.
func (r *SynopsisResult) SynopsisPtr() *string { return r.synopsis }

// Digest returns the synopsis, falling back to the text snippet when there is none.
func (r *SynopsisResult) Digest(maxRunes int) string {
	if s, ok := r.Synopsis(); ok {
		return s
	}
	return r.Snippet(maxRunes)
}

// WithoutSynopses lifts plain matches into results with no synopsis.
func WithoutSynopses(ms []Match) []SynopsisResult {
	out := make([]SynopsisResult, len(ms))
	for i, m := range ms {
		out[i] = WithoutSynopsis(m)
	}
	return out
}
