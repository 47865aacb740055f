// Package metrics holds the Prometheus collectors of the service.
package metrics

import "sync"

// Namespace prefixes every metric name.
const Namespace = "govlens"

var registerOnce sync.Once

// Register registers all domain collectors with the default registry. Safe to call more than once.
// HTTP collectors register themselves in init.
func Register() {
	registerOnce.Do(func() {
		registerEmbedding()
		registerLLM()
		registerPipeline()
		registerBudget()
	})
}
