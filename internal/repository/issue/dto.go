package issue

import domissue "github.com/whatthegovdoin/govlens/internal/domain/issue"

// issueJSON is the stored representation; field names follow the legacy documents.
type issueJSON struct {
	ID              int64    `json:"_id"`
	Issue           string   `json:"issue"`
	Summary         string   `json:"summary"`
	LLMSummary      string   `json:"llm_summary"`
	Articles        []string `json:"articles"`
	ExecutiveOrders []string `json:"executive_orders"`
}

func toJSON(i *domissue.Issue) issueJSON {
	return issueJSON{
		ID:              i.ID(),
		Issue:           i.Title(),
		Summary:         i.Summary(),
		LLMSummary:      i.LLMSummary(),
		Articles:        i.Articles(),
		ExecutiveOrders: i.ExecutiveOrders(),
	}
}

func (j issueJSON) toDomain() domissue.Issue {
	return domissue.Reconstruct(j.ID, j.Issue, j.Summary, j.LLMSummary, j.Articles, j.ExecutiveOrders)
}
