package issue

import (
	"context"

	domissue "github.com/whatthegovdoin/govlens/internal/domain/issue"
)

// Repository persists curated issues.
type Repository interface {
	List(ctx context.Context) ([]domissue.Issue, error)
	Replace(ctx context.Context, iss *domissue.Issue) error
}
