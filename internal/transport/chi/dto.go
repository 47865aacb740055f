package chi

import (
	"fmt"
	"strings"

	"github.com/whatthegovdoin/govlens/internal/domain"
	"github.com/whatthegovdoin/govlens/internal/domain/issue"
	"github.com/whatthegovdoin/govlens/internal/domain/match"
	issueuc "github.com/whatthegovdoin/govlens/internal/usecase/issue"
	usageuc "github.com/whatthegovdoin/govlens/internal/usecase/usage"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type greetingResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type matchResponse struct {
	DocumentID  int64   `json:"document_id"`
	Label       string  `json:"label"`
	TextSnippet string  `json:"text_snippet"`
	Similarity  float64 `json:"similarity"`
}

type synopsisResponse struct {
	matchResponse
	Synopsis *string `json:"synopsis"`
}

type failureResponse struct {
	Corpus  string `json:"corpus"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type biographyResponse struct {
	Articles        []matchResponse   `json:"articles"`
	ExecutiveOrders []matchResponse   `json:"executive_orders"`
	Failures        []failureResponse `json:"failures"`
}

type summarizeRequest struct {
	Prompt    string `json:"prompt"`
	QueryText string `json:"query_text"`
}

type summarizeResponse struct {
	LLMResponse     string             `json:"llm_response"`
	Articles        []synopsisResponse `json:"articles"`
	ExecutiveOrders []synopsisResponse `json:"executive_orders"`
	Failures        []failureResponse  `json:"failures"`
}

type issueJSON struct {
	ID              int64    `json:"_id"`
	Issue           string   `json:"issue"`
	Summary         string   `json:"summary"`
	LLMSummary      string   `json:"llm_summary"`
	Articles        []string `json:"articles"`
	ExecutiveOrders []string `json:"executive_orders"`
}

// replaceIssueRequest tells absent fields from empty ones: a replacement
// overwrites every field, so each must be sent.
type replaceIssueRequest struct {
	ID              *int64    `json:"_id"`
	Issue           *string   `json:"issue"`
	Summary         *string   `json:"summary"`
	LLMSummary      *string   `json:"llm_summary"`
	Articles        *[]string `json:"articles"`
	ExecutiveOrders *[]string `json:"executive_orders"`
}

func (req *replaceIssueRequest) toInput() (issueuc.Input, error) {
	var missing []string
	if req.ID == nil {
		missing = append(missing, "_id")
	}
	if req.Issue == nil {
		missing = append(missing, "issue")
	}
	if req.Summary == nil {
		missing = append(missing, "summary")
	}
	if req.LLMSummary == nil {
		missing = append(missing, "llm_summary")
	}
	if req.Articles == nil {
		missing = append(missing, "articles")
	}
	if req.ExecutiveOrders == nil {
		missing = append(missing, "executive_orders")
	}
	if len(missing) > 0 {
		return issueuc.Input{}, fmt.Errorf("%w: missing fields: %s", domain.ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return issueuc.Input{
		ID:              *req.ID,
		Title:           *req.Issue,
		Summary:         *req.Summary,
		LLMSummary:      *req.LLMSummary,
		Articles:        *req.Articles,
		ExecutiveOrders: *req.ExecutiveOrders,
	}, nil
}

type budgetResponse struct {
	Kind            string `json:"kind"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensRemaining int64  `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
}

type usageResponse struct {
	Period        string           `json:"period"`
	PeriodStartAt int64            `json:"period_start_at"`
	PeriodEndAt   int64            `json:"period_end_at"`
	Budgets       []budgetResponse `json:"budgets"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func matchToResponse(m *match.Match, snippetRunes int) matchResponse {
	return matchResponse{
		DocumentID:  m.DocumentID(),
		Label:       m.Label(),
		TextSnippet: m.Snippet(snippetRunes),
		Similarity:  m.Similarity(),
	}
}

func matchesToResponse(ms []match.Match, snippetRunes int) []matchResponse {
	out := make([]matchResponse, len(ms))
	for i := range ms {
		out[i] = matchToResponse(&ms[i], snippetRunes)
	}
	return out
}

func synopsesToResponse(rs []match.SynopsisResult, snippetRunes int) []synopsisResponse {
	out := make([]synopsisResponse, len(rs))
	for i := range rs {
		out[i] = synopsisResponse{
			matchResponse: matchToResponse(&rs[i].Match, snippetRunes),
			Synopsis:      rs[i].SynopsisPtr(),
		}
	}
	return out
}

func failuresToResponse(fs []domain.CorpusFailure) []failureResponse {
	out := make([]failureResponse, len(fs))
	for i, f := range fs {
		out[i] = failureResponse{Corpus: string(f.Corpus), Kind: string(f.Kind), Message: f.Message}
	}
	return out
}

func issueToJSON(iss *issue.Issue) issueJSON {
	return issueJSON{
		ID:              iss.ID(),
		Issue:           iss.Title(),
		Summary:         iss.Summary(),
		LLMSummary:      iss.LLMSummary(),
		Articles:        iss.Articles(),
		ExecutiveOrders: iss.ExecutiveOrders(),
	}
}

func usageToResponse(r usageuc.Report) usageResponse {
	budgets := make([]budgetResponse, len(r.Budgets))
	for i, b := range r.Budgets {
		budgets[i] = budgetResponse{
			Kind:            b.Kind,
			TokensLimit:     b.Limit,
			TokensUsed:      b.Used,
			TokensRemaining: b.Remaining,
			IsExhausted:     b.Exhausted,
		}
	}
	return usageResponse{
		Period:        string(r.Period),
		PeriodStartAt: r.PeriodStart,
		PeriodEndAt:   r.PeriodEnd,
		Budgets:       budgets,
	}
}
