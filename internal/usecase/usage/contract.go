package usage

import "github.com/whatthegovdoin/govlens/internal/usecase/budget"

// BudgetReader provides read-only access to one token budget.
type BudgetReader interface {
	Kind() string
	Snapshot() budget.Snapshot
}
