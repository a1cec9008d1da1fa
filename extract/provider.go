package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/w-h-a/rag/generator"
)

// providerContentLimit bounds how much document text goes to the model; the
// provider is almost always named near the top.
const providerContentLimit = 3000

const providerPrompt = `Analyze this document and extract the payment provider name if present.

Document filename: %s
Document content (beginning):
%s

Common payment providers include: SafetyPay, Stripe, Adyen, MercadoPago, PayPal, Nequi, PIX, SPEI, PSE, etc.

Return ONLY the provider name if found, or "NONE" if no provider is mentioned.
Examples of good responses: "SafetyPay", "MercadoPago", "NONE"

Provider name:`

// ProviderExtractor asks a model which payment provider a document is about.
type ProviderExtractor struct {
	generator generator.Generator
}

func NewProviderExtractor(g generator.Generator) *ProviderExtractor {
	if g == nil {
		panic("generator is required")
	}

	return &ProviderExtractor{
		generator: g,
	}
}

// ProviderName returns the extracted provider, or "" when the document does
// not mention one.
func (e *ProviderExtractor) ProviderName(ctx context.Context, content string, filename string) (string, error) {
	truncated := content
	if len(truncated) > providerContentLimit {
		truncated = truncated[:providerContentLimit]
	}

	rsp, err := e.generator.Generate(ctx, fmt.Sprintf(providerPrompt, filename, truncated))
	if err != nil {
		return "", err
	}

	provider := strings.Trim(strings.TrimSpace(rsp.Text), `"`)

	if len(provider) == 0 || strings.EqualFold(provider, "NONE") {
		return "", nil
	}

	return provider, nil
}
