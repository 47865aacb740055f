package domain

import "fmt"

// Corpus names one fixed collection of documents of a single kind.
type Corpus string

const (
	// CorpusArticles is the news articles corpus.
	CorpusArticles Corpus = "articles"
	// CorpusExecutiveOrders is the executive orders corpus.
	CorpusExecutiveOrders Corpus = "executive_orders"
)

// Corpora lists every corpus in the order responses present them.
var Corpora = []Corpus{CorpusArticles, CorpusExecutiveOrders}

// ParseCorpus validates a corpus name.
func ParseCorpus(s string) (Corpus, error) {
	switch Corpus(s) {
	case CorpusArticles, CorpusExecutiveOrders:
		return Corpus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown corpus %q", ErrInvalidArgument, s)
	}
}

// Noun returns the human label used in prompts ("article", "executive order").
func (c Corpus) Noun() string {
	if c == CorpusExecutiveOrders {
		return "executive order"
	}
	return "article"
}

func (c Corpus) String() string { return string(c) }
