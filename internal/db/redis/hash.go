package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/whatthegovdoin/govlens/internal/db"
)

// scanBatch is the COUNT hint per SCAN round-trip.
const scanBatch = 500

// ScanHashes walks every hash whose key matches pattern. Each SCAN page is
// resolved with one pipelined HGETALL batch before the next page is requested,
// so memory stays bounded by the page size. A key deleted between SCAN and
// HGETALL is visited with an empty map.
func (s *Store) ScanHashes(ctx context.Context, pattern string, visit db.HashVisitor) error {
	var cursor uint64
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Type("hash").Build()
		page, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return &db.Error{Op: db.OpScan, Err: err}
		}
		if err := s.visitHashes(ctx, page.Elements, visit); err != nil {
			return err
		}
		if page.Cursor == 0 {
			return nil
		}
		cursor = page.Cursor
	}
}

func (s *Store) visitHashes(ctx context.Context, keys []string, visit db.HashVisitor) error {
	if len(keys) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		if err := visit(keys[i], m); err != nil {
			return err
		}
	}
	return nil
}

// Scan lists every key matching pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
