package issue

import (
	"fmt"
	"strings"

	"github.com/whatthegovdoin/govlens/internal/domain"
)

// Issue is a tracked policy issue with its linked sources. Replaced wholesale by id.
type Issue struct {
	id              int64
	title           string
	summary         string
	llmSummary      string
	articles        []string
	executiveOrders []string
}

// New validates and creates an Issue.
func New(id int64, title, summary, llmSummary string, articles, executiveOrders []string) (Issue, error) {
	if id <= 0 {
		return Issue{}, fmt.Errorf("%w: issue id must be positive, got %d", domain.ErrInvalidArgument, id)
	}
	if strings.TrimSpace(title) == "" {
		return Issue{}, fmt.Errorf("%w: issue title is required", domain.ErrInvalidArgument)
	}
	return Reconstruct(id, title, summary, llmSummary, articles, executiveOrders), nil
}

// Reconstruct creates an Issue without validation (storage hydration).
func Reconstruct(id int64, title, summary, llmSummary string, articles, executiveOrders []string) Issue {
	if articles == nil {
		articles = []string{}
	}
	if executiveOrders == nil {
		executiveOrders = []string{}
	}
	return Issue{
		id:              id,
		title:           title,
		summary:         summary,
		llmSummary:      llmSummary,
		articles:        articles,
		executiveOrders: executiveOrders,
	}
}

// ID returns the issue identifier.
func (i *Issue) ID() int64 { return i.id }

// Title returns the short issue name.
func (i *Issue) Title() string { return i.title }

// Summary returns the human-written summary.
func (i *Issue) Summary() string { return i.summary }

// LLMSummary returns the generated briefing text.
func (i *Issue) LLMSummary() string { return i.llmSummary }

// Articles returns linked article titles.
func (i *Issue) Articles() []string { return i.articles }

// ExecutiveOrders returns linked executive order titles.
func (i *Issue) ExecutiveOrders() []string { return i.executiveOrders }
