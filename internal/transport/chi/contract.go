package chi

import (
	"context"

	"github.com/whatthegovdoin/govlens/internal/domain/issue"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	"github.com/whatthegovdoin/govlens/internal/usecase/briefing"
	healthuc "github.com/whatthegovdoin/govlens/internal/usecase/health"
	issueuc "github.com/whatthegovdoin/govlens/internal/usecase/issue"
	"github.com/whatthegovdoin/govlens/internal/usecase/retrieval"
	usageuc "github.com/whatthegovdoin/govlens/internal/usecase/usage"
)

// Retriever serves the retrieval-only endpoints.
type Retriever interface {
	Articles(ctx context.Context, queryText string, topK int) ([]match.Match, error)
	ExecutiveOrders(ctx context.Context, queryText string, topK int) ([]match.Match, error)
	Bundle(ctx context.Context, queryText string, topK int) (retrieval.Bundle, error)
}

// Briefer serves the summarization endpoint.
type Briefer interface {
	Summarize(ctx context.Context, queryText string) (briefing.Response, error)
}

// Issues serves the issue catalogue.
type Issues interface {
	List(ctx context.Context) ([]issue.Issue, error)
	Replace(ctx context.Context, in issueuc.Input) (issue.Issue, error)
}

// UsageReporter serves budget reports.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// HealthChecker serves the health endpoint.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
