package domain

// CorpusFailure records a corpus whose retrieval failed while its sibling succeeded.
type CorpusFailure struct {
	Corpus  Corpus
	Kind    Kind
	Message string
}

// NewCorpusFailure classifies err for corpus c.
func NewCorpusFailure(c Corpus, err error) CorpusFailure {
	return CorpusFailure{Corpus: c, Kind: KindOf(err), Message: err.Error()}
}
