package domain

import "time"

// BudgetPeriod is the accounting window a token counter covers.
type BudgetPeriod string

const (
	BudgetDaily   BudgetPeriod = "daily"
	BudgetMonthly BudgetPeriod = "monthly"
)

// BudgetCounter identifies one persisted token counter: a provider's usage
// of one budget kind ("embedding", "llm") within a single UTC window.
// Start is the first instant of that window.
type BudgetCounter struct {
	Kind     string
	Provider string
	Period   BudgetPeriod
	Start    time.Time
}

// Window returns the counter's window label, "2006-01-02" for days and
// "2006-01" for months.
func (c BudgetCounter) Window() string {
	if c.Period == BudgetDaily {
		return c.Start.Format(time.DateOnly)
	}
	return c.Start.Format("2006-01")
}
