package rag

// Source identifies one source document cited by an answer.
type Source struct {
	Id       string `json:"id"`
	Type     string `json:"type"`
	Provider string `json:"provider,omitempty"`
	File     string `json:"file,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Answer is the pipeline's reply to one question. QueryType distinguishes
// semantic answers from analytical ones, which are computed from store
// counts and never hit the generator.
type Answer struct {
	Text            string         `json:"answer"`
	Sources         []Source       `json:"sources,omitempty"`
	RetrievedDocs   int            `json:"retrieved_docs"`
	Usage           Usage          `json:"usage"`
	Model           string         `json:"model,omitempty"`
	QueryType       string         `json:"query_type"`
	Analytics       map[string]any `json:"analytics,omitempty"`
	TicketId        string         `json:"ticket_id,omitempty"`
	ProviderName    string         `json:"provider_name,omitempty"`
	HasProviderDocs bool           `json:"has_provider_docs,omitempty"`
}

const (
	QueryTypeSemantic     = "semantic"
	QueryTypeAnalytical   = "analytical"
	QueryTypeTicketLookup = "ticket_lookup"
)
