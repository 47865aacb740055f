package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and summarization pipeline metrics.
var (
	CorpusFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "corpus_failures_total",
			Help:      "Corpus retrievals that failed while the sibling corpus succeeded",
		},
		[]string{"corpus", "kind"},
	)

	SynopsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "synopses_total",
			Help:      "Per-document synopsis outcomes",
		},
		[]string{"corpus", "outcome"}, // "ok", "failed" or "canceled"
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Single-corpus retrieval duration (list + rank) in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"corpus"},
	)
)

func registerPipeline() {
	prometheus.MustRegister(CorpusFailuresTotal)
	prometheus.MustRegister(SynopsesTotal)
	prometheus.MustRegister(RetrievalDuration)
}
