package generator

import "context"

// Result carries the generated text plus the token usage the provider
// reported, when it reports any.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}
