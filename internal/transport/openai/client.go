package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// newClient builds a client for an OpenAI-compatible endpoint. An empty baseURL keeps the OpenAI default.
func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(clientCfg)
}

// wrapFailure turns a client error into an error wrapping sentinel, keeping the
// provider's status and message. It also returns the status (0 for transport failures).
// A transport failure caused by ctx ending also wraps the context error.
func wrapFailure(ctx context.Context, op string, err, sentinel error) (int, error) {
	status, detail := apiFailure(err)
	if status == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return 0, fmt.Errorf("%s: %w: %w: %w", op, err, ctxErr, sentinel)
		}
		return 0, fmt.Errorf("%s: %w: %w", op, err, sentinel)
	}
	return status, fmt.Errorf("%s: status %d: %s: %w", op, status, detail, sentinel)
}

// apiFailure extracts the HTTP status and a human-readable message from a client error.
// status is 0 for transport failures (DNS, connection reset, timeout).
func apiFailure(err error) (status int, detail string) {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if d := extractDetail(reqErr.Body); d != "" {
			return reqErr.HTTPStatusCode, d
		}
		return reqErr.HTTPStatusCode, string(reqErr.Body)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, apiErr.Message
	}

	return 0, err.Error()
}

// extractDetail extracts the "detail" field from a JSON error body (text-embeddings-inference and Nebius format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
