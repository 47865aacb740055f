package domain

import "context"

// Prompt is a single-turn LLM request.
type Prompt struct {
	System string
	User   string
}

// Generation is the LLM response text with token usage.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator produces text from a prompt.
// Errors wrap ErrRateLimited when the provider rejected the call for rate reasons,
// ErrGenerationError otherwise.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (Generation, error)
}
