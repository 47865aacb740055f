package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/metrics"
)

// Generator is an LLM client over the OpenAI-compatible chat completions API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// GeneratorConfig holds the chat completion settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int // 0 = provider default
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewGenerator creates a chat completion client.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	return &Generator{
		client:      newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator with a single system + user exchange.
// HTTP 429 maps to domain.ErrRateLimited, every other failure to domain.ErrGenerationError.
func (g *Generator) Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		if status, _ := apiFailure(err); status == http.StatusTooManyRequests {
			metrics.LLMRequestsTotal.WithLabelValues(g.model, "rate_limited").Inc()
			_, wrapped := wrapFailure(ctx, "chat completion", err, domain.ErrRateLimited)
			return domain.Generation{}, wrapped
		}
		metrics.LLMRequestsTotal.WithLabelValues(g.model, "error").Inc()
		_, wrapped := wrapFailure(ctx, "chat completion", err, domain.ErrGenerationError)
		return domain.Generation{}, wrapped
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.LLMRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return domain.Generation{}, fmt.Errorf("empty chat completion: %w", domain.ErrGenerationError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	return domain.Generation{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
