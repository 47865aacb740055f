// Package budget enforces daily and monthly token caps for a paid provider.
package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/metrics"
)

// Action defines behavior when a token budget is exceeded.
type Action string

const (
	// ActionWarn logs a warning but allows the request.
	ActionWarn Action = "warn"
	// ActionReject blocks the request.
	ActionReject Action = "reject"
)

// Kinds of budget tracked by the service.
const (
	KindEmbedding = "embedding"
	KindLLM       = "llm"
)

// Store is the persistence interface for budget counters.
type Store interface {
	Add(ctx context.Context, c domain.BudgetCounter, tokens int64) error
	Load(ctx context.Context, counters ...domain.BudgetCounter) ([]int64, error)
}

// Config describes one budget.
type Config struct {
	Kind         string // KindEmbedding or KindLLM
	Provider     string
	DailyLimit   int64 // 0 = unlimited
	MonthlyLimit int64 // 0 = unlimited
	Action       Action
}

// Snapshot is a consistent read of the counters.
type Snapshot struct {
	DailyLimit       int64
	DailyUsed        int64
	RemainingDaily   int64 // -1 when unlimited
	MonthlyLimit     int64
	MonthlyUsed      int64
	RemainingMonthly int64 // -1 when unlimited
}

// Tracker is an in-memory token budget with optional write-behind persistence.
// Check never leaves the process; Record updates memory first, then the store.
type Tracker struct {
	mu             sync.Mutex
	cfg            Config
	dailyUsed      int64
	monthlyUsed    int64
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          Store
	now            func() time.Time
	logger         *zap.Logger
}

// New creates a tracker.
func New(cfg Config, logger *zap.Logger) *Tracker {
	t := &Tracker{cfg: cfg, now: func() time.Time { return time.Now().UTC() }, logger: logger}
	now := t.now()
	t.lastDayReset = truncateToDay(now)
	t.lastMonthReset = truncateToMonth(now)
	return t
}

// WithStore attaches a persistence store and loads current counters.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.store = store
	t.loadFromStore(ctx)
	return t
}

func (t *Tracker) loadFromStore(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	daily, monthly := t.counters(t.now())
	vals, err := t.store.Load(ctx, daily, monthly)
	if err != nil {
		t.logger.Warn("Failed to load budget from store, starting at zero",
			zap.String("kind", t.cfg.Kind), zap.Error(err))
		return
	}
	t.dailyUsed, t.monthlyUsed = vals[0], vals[1]

	t.logger.Info("Budget loaded from store",
		zap.String("kind", t.cfg.Kind),
		zap.String("provider", t.cfg.Provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthlyUsed),
	)
}

// counters names the daily and monthly windows containing now.
func (t *Tracker) counters(now time.Time) (daily, monthly domain.BudgetCounter) {
	daily = domain.BudgetCounter{
		Kind: t.cfg.Kind, Provider: t.cfg.Provider, Period: domain.BudgetDaily, Start: truncateToDay(now),
	}
	monthly = domain.BudgetCounter{
		Kind: t.cfg.Kind, Provider: t.cfg.Provider, Period: domain.BudgetMonthly, Start: truncateToMonth(now),
	}
	return daily, monthly
}

func (t *Tracker) exceededErr() error {
	if t.cfg.Kind == KindLLM {
		return domain.ErrLLMQuotaExceeded
	}
	return domain.ErrEmbeddingQuotaExceeded
}

// Check verifies the budget allows a new request.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()

	dailyExceeded := t.cfg.DailyLimit > 0 && t.dailyUsed >= t.cfg.DailyLimit
	monthlyExceeded := t.cfg.MonthlyLimit > 0 && t.monthlyUsed >= t.cfg.MonthlyLimit
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}
	metrics.BudgetExceededTotal.WithLabelValues(t.cfg.Kind, string(t.cfg.Action)).Inc()

	if t.cfg.Action == ActionReject {
		return fmt.Errorf("%s budget: %w", t.cfg.Kind, t.exceededErr())
	}

	t.logger.Warn("Token budget exceeded",
		zap.String("kind", t.cfg.Kind),
		zap.String("provider", t.cfg.Provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.cfg.DailyLimit),
		zap.Int64("monthly_used", t.monthlyUsed),
		zap.Int64("monthly_limit", t.cfg.MonthlyLimit),
	)
	return nil
}

// Record registers consumed tokens and publishes the remaining budget gauge.
func (t *Tracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyUsed += tokens
	t.monthlyUsed += tokens
	store := t.store
	daily, monthly := t.counters(t.now())
	snap := t.snapshotLocked()
	t.mu.Unlock()

	metrics.BudgetTokensRemaining.WithLabelValues(t.cfg.Kind, t.cfg.Provider, "daily").Set(float64(snap.RemainingDaily))
	metrics.BudgetTokensRemaining.WithLabelValues(t.cfg.Kind, t.cfg.Provider, "monthly").Set(float64(snap.RemainingMonthly))

	if store == nil {
		return
	}

	// Detached from the request so a cancelled caller still gets its usage persisted.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, c := range []domain.BudgetCounter{daily, monthly} {
		if err := store.Add(ctx, c, tokens); err != nil {
			t.logger.Warn("Failed to persist budget",
				zap.String("kind", c.Kind), zap.String("period", string(c.Period)), zap.Error(err))
		}
	}
}

// Snapshot returns the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.snapshotLocked()
}

// Kind returns the budget kind.
func (t *Tracker) Kind() string { return t.cfg.Kind }

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		DailyLimit:       t.cfg.DailyLimit,
		DailyUsed:        t.dailyUsed,
		RemainingDaily:   remaining(t.cfg.DailyLimit, t.dailyUsed),
		MonthlyLimit:     t.cfg.MonthlyLimit,
		MonthlyUsed:      t.monthlyUsed,
		RemainingMonthly: remaining(t.cfg.MonthlyLimit, t.monthlyUsed),
	}
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (t *Tracker) resetIfNeeded() {
	now := t.now()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(t.lastDayReset) {
		t.dailyUsed = 0
		t.lastDayReset = today
	}
	if thisMonth.After(t.lastMonthReset) {
		t.monthlyUsed = 0
		t.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
