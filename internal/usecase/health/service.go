package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const checkTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding ProviderChecker
	llm       ProviderChecker
}

// New creates a Service. embedding and llm can be nil.
func New(db DBPinger, embedding, llm ProviderChecker) *Service {
	return &Service{db: db, embedding: embedding, llm: llm}
}

// Check runs all component checks concurrently, each with its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	probes := map[string]func(context.Context) error{"database": s.db.Ping}
	if s.embedding != nil {
		probes["embedding"] = s.embedding.HealthCheck
	}
	if s.llm != nil {
		probes["llm"] = s.llm.HealthCheck
	}

	names := make([]string, 0, len(probes))
	results := make([]CheckResult, 0, len(probes))
	for name := range probes {
		names = append(names, name)
		results = append(results, CheckOK)
	}

	var g errgroup.Group
	for i, name := range names {
		probe := probes[name]
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			if err := probe(cctx); err != nil {
				results[i] = CheckError
			}
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	checks := make(map[string]CheckResult, len(names))
	for i, name := range names {
		checks[name] = results[i]
		if results[i] == CheckError {
			status = Degraded
		}
	}
	return Report{Status: status, Checks: checks}
}
