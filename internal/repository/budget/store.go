// Package budget persists token budget counters in the key-value store.
package budget

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/whatthegovdoin/govlens/internal/db"
	"github.com/whatthegovdoin/govlens/internal/domain"
)

type kv interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

var _ kv = (db.KVStore)(nil)

// Store keeps one INCRBY counter per budget window. Counters expire on
// their own some time after the window closes.
type Store struct {
	kv   kv
	ttls map[domain.BudgetPeriod]time.Duration
}

// New creates a budget store. dailyTTL must outlive a day and monthlyTTL a month.
func New(s kv, dailyTTL, monthlyTTL time.Duration) *Store {
	return &Store{
		kv: s,
		ttls: map[domain.BudgetPeriod]time.Duration{
			domain.BudgetDaily:   dailyTTL,
			domain.BudgetMonthly: monthlyTTL,
		},
	}
}

// Add increments the counter by tokens. The TTL is attached on first write only.
func (s *Store) Add(ctx context.Context, c domain.BudgetCounter, tokens int64) error {
	k := key(c)
	if err := s.kv.IncrBy(ctx, k, tokens); err != nil {
		return fmt.Errorf("budget add %s: %w", k, err)
	}
	if ttl := s.ttls[c.Period]; ttl > 0 {
		if err := s.kv.Expire(ctx, k, ttl, true); err != nil {
			return fmt.Errorf("budget expire %s: %w", k, err)
		}
	}
	return nil
}

// Load reads several counters in one round-trip. Missing counters read as zero.
func (s *Store) Load(ctx context.Context, counters ...domain.BudgetCounter) ([]int64, error) {
	keys := make([]string, len(counters))
	for i, c := range counters {
		keys[i] = key(c)
	}

	raw, err := s.kv.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("budget load: %w", err)
	}

	out := make([]int64, len(counters))
	for i, v := range raw {
		if v == nil {
			continue
		}
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("budget load %s: %w", keys[i], err)
		}
		out[i] = n
	}
	return out, nil
}

// key lays counters out as govlens:budget:{kind}:{provider}:{period}:{window}.
func key(c domain.BudgetCounter) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s:%s", domain.KeyPrefix, c.Kind, c.Provider, c.Period, c.Window())
}
