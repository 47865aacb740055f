package metrics

import "github.com/prometheus/client_golang/prometheus"

// Token budget metrics. "kind" is "embedding" or "llm".
var (
	BudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "budget_tokens_remaining",
			Help:      "Remaining token budget, -1 when unlimited",
		},
		[]string{"kind", "provider", "period"},
	)

	BudgetExceededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "budget_exceeded_total",
			Help:      "Provider calls attempted over budget, by configured action",
		},
		[]string{"kind", "action"}, // "warn" / "reject"
	)
)

func registerBudget() {
	prometheus.MustRegister(BudgetTokensRemaining)
	prometheus.MustRegister(BudgetExceededTotal)
}
