package synopsis

import (
	"context"

	"github.com/whatthegovdoin/govlens/internal/domain"
)

// Generator is the local interface for the LLM client.
type Generator interface {
	Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error)
}
