package document

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/whatthegovdoin/govlens/internal/db"
	"github.com/whatthegovdoin/govlens/internal/domain"
	domdoc "github.com/whatthegovdoin/govlens/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	ScanHashes(ctx context.Context, pattern string, visit db.HashVisitor) error
}

// Repo reads corpus documents stored as hashes under govlens:doc:{corpus}:{id}.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// ListDocuments returns every document of a corpus, ordered by id.
// Keys whose suffix is not a positive integer, keys deleted mid-scan, and
// repeats SCAN may report are skipped.
func (r *Repo) ListDocuments(ctx context.Context, c domain.Corpus) ([]domdoc.Document, error) {
	if _, ok := corpusFields[c]; !ok {
		return nil, fmt.Errorf("list documents: %w: unknown corpus %q", domain.ErrInvalidArgument, c)
	}

	prefix := keyPrefix(c)
	seen := make(map[int64]struct{})
	docs := make([]domdoc.Document, 0)

	err := r.store.ScanHashes(ctx, prefix+"*", func(key string, fields map[string]string) error {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil || id <= 0 || len(fields) == 0 {
			return nil
		}
		if _, dup := seen[id]; dup {
			return nil
		}
		seen[id] = struct{}{}
		docs = append(docs, parseHashFields(id, c, fields))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	return docs, nil
}

func keyPrefix(c domain.Corpus) string {
	return domain.KeyPrefix + "doc:" + string(c) + ":"
}
