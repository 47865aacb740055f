package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/whatthegovdoin/govlens/internal/domain"
	domissue "github.com/whatthegovdoin/govlens/internal/domain/issue"
)

var issueKeyPrefix = domain.KeyPrefix + "issue:"

// store is the consumer interface for issues (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Replace(ctx context.Context, key string, value []byte) (bool, error)
}

// Repo persists issues as JSON values under govlens:issue:{id}.
type Repo struct {
	store store
}

// New creates an issue repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// List returns all stored issues ordered by id. Unreadable entries are skipped.
func (r *Repo) List(ctx context.Context) ([]domissue.Issue, error) {
	keys, err := r.store.Scan(ctx, issueKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan issues: %w", err)
	}

	out := make([]domissue.Issue, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}
	for _, raw := range values {
		if raw == nil {
			continue
		}
		var j issueJSON
		if err := json.Unmarshal(raw, &j); err != nil {
			continue
		}
		out = append(out, j.toDomain())
	}

	sort.Slice(out, func(a, b int) bool { return out[a].ID() < out[b].ID() })
	return out, nil
}

// Replace overwrites an existing issue. Returns domain.ErrNotFound when the id is unknown.
func (r *Repo) Replace(ctx context.Context, iss *domissue.Issue) error {
	data, err := json.Marshal(toJSON(iss))
	if err != nil {
		return fmt.Errorf("marshal issue: %w", err)
	}

	key := issueKeyPrefix + strconv.FormatInt(iss.ID(), 10)
	ok, err := r.store.Replace(ctx, key, data)
	if err != nil {
		return fmt.Errorf("replace issue %d: %w", iss.ID(), err)
	}
	if !ok {
		return fmt.Errorf("issue %d: %w", iss.ID(), domain.ErrNotFound)
	}
	return nil
}
