// Package issue manages the curated issue catalogue.
package issue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domissue "github.com/whatthegovdoin/govlens/internal/domain/issue"
	"github.com/whatthegovdoin/govlens/internal/logger"
)

// Input carries the fields of a replacement issue.
type Input struct {
	ID              int64
	Title           string
	Summary         string
	LLMSummary      string
	Articles        []string
	ExecutiveOrders []string
}

// Service handles issue use cases.
type Service struct {
	repo Repository
}

// New creates a Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all issues ordered by id.
func (s *Service) List(ctx context.Context) ([]domissue.Issue, error) {
	issues, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// Replace overwrites an existing issue. Issues are never created here:
// a missing id yields domain.ErrNotFound.
func (s *Service) Replace(ctx context.Context, in Input) (domissue.Issue, error) {
	iss, err := domissue.New(in.ID, in.Title, in.Summary, in.LLMSummary, in.Articles, in.ExecutiveOrders)
	if err != nil {
		return domissue.Issue{}, fmt.Errorf("validate issue: %w", err)
	}
	if err := s.repo.Replace(ctx, &iss); err != nil {
		return domissue.Issue{}, fmt.Errorf("replace issue: %w", err)
	}
	logger.FromContext(ctx).Info("Issue replaced", zap.Int64("issue_id", iss.ID()))
	return iss, nil
}
