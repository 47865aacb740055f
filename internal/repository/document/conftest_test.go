package document

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/whatthegovdoin/govlens/internal/db"
)

// mockStore replays keys in order, resolving each against hashes.
// Keys missing from hashes are visited with an empty map, like a key deleted mid-scan.
type mockStore struct {
	keys    []string
	hashes  map[string]map[string]string
	err     error
	pattern string
}

func (m *mockStore) ScanHashes(_ context.Context, pattern string, visit db.HashVisitor) error {
	m.pattern = pattern
	if m.err != nil {
		return m.err
	}
	for _, k := range m.keys {
		fields := m.hashes[k]
		if fields == nil {
			fields = map[string]string{}
		}
		if err := visit(k, fields); err != nil {
			return err
		}
	}
	return nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
