// Package db declares the key-value store the service keeps its corpora,
// issues, embedding cache and token budgets in.
package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	HashStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashVisitor receives one scanned hash. Returning an error stops the scan
// and is passed through to the caller unchanged.
type HashVisitor func(key string, fields map[string]string) error

// HashStore streams hash-encoded corpus documents.
type HashStore interface {
	ScanHashes(ctx context.Context, pattern string, visit HashVisitor) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Replace overwrites key only if it already exists (SET XX). Returns false when it did not.
	Replace(ctx context.Context, key string, value []byte) (bool, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
