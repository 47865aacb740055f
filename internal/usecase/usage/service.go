// Package usage reports token consumption against the configured budgets.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/whatthegovdoin/govlens/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name; empty selects PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period %q: %w", s, domain.ErrInvalidArgument)
	}
}

// Budget is the state of one budget (embedding or llm) within the period.
type Budget struct {
	Kind      string
	Limit     int64 // 0 when unlimited
	Used      int64
	Remaining int64 // -1 when unlimited
	Exhausted bool
}

// Report is a usage report for one period.
type Report struct {
	Period      Period
	PeriodStart int64 // unix millis
	PeriodEnd   int64 // unix millis
	Budgets     []Budget
}

// Service handles usage reporting.
type Service struct {
	readers []BudgetReader
	now     func() time.Time
}

// New creates a Service over the given budgets. No readers means unlimited mode.
func New(readers ...BudgetReader) *Service {
	return &Service{readers: readers, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := s.now().UTC()
	var start, end time.Time
	switch period {
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	default:
		period = PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	}

	budgets := make([]Budget, 0, len(s.readers))
	for _, r := range s.readers {
		snap := r.Snapshot()
		b := Budget{Kind: r.Kind()}
		if period == PeriodMonth {
			b.Limit, b.Used, b.Remaining = snap.MonthlyLimit, snap.MonthlyUsed, snap.RemainingMonthly
		} else {
			b.Limit, b.Used, b.Remaining = snap.DailyLimit, snap.DailyUsed, snap.RemainingDaily
		}
		b.Exhausted = b.Limit > 0 && b.Remaining <= 0
		budgets = append(budgets, b)
	}

	return Report{
		Period:      period,
		PeriodStart: start.UnixMilli(),
		PeriodEnd:   end.UnixMilli(),
		Budgets:     budgets,
	}
}
