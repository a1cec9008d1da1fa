// Package retriever answers "which chunks matter for this query" by
// combining vector search, MMR diversity re-ranking, and metadata filters.
package retriever

import (
	"context"
	"fmt"

	"github.com/w-h-a/rag/document"
	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/store"
)

// fetchMultiplier is how many extra candidates vector search returns for MMR
// to choose from.
const fetchMultiplier = 3

type Retriever struct {
	store    store.Store
	embedder embedder.Embedder
	options  Options
}

// TicketBundle is a Jira ticket's chunks together with the Confluence
// documentation for the provider the ticket is about.
type TicketBundle struct {
	TicketId     string
	Chunks       []store.Chunk
	ProviderName string
	ProviderDocs []store.Chunk
}

func New(s store.Store, e embedder.Embedder, opts ...Option) *Retriever {
	if s == nil {
		panic("store is required")
	}

	if e == nil {
		panic("embedder is required")
	}

	return &Retriever{
		store:    s,
		embedder: e,
		options:  NewOptions(opts...),
	}
}

// Search embeds the query, pulls candidates from the store, and re-ranks
// them for diversity unless MMR is disabled.
func (r *Retriever) Search(ctx context.Context, query string, opts ...SearchOption) ([]store.Chunk, error) {
	options := SearchOptions{
		TopK:   r.options.TopK,
		Lambda: r.options.Lambda,
	}
	for _, opt := range opts {
		opt(&options)
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchLimit := options.TopK
	if !options.DisableMMR {
		fetchLimit = options.TopK * fetchMultiplier
	}

	candidates, err := r.store.Search(ctx, vector, options.Filter, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if options.DisableMMR || len(candidates) == 0 {
		if len(candidates) > options.TopK {
			candidates = candidates[:options.TopK]
		}
		return candidates, nil
	}

	return Select(candidates, vector, options.TopK, options.Lambda), nil
}

// BySource returns every chunk of one source document.
func (r *Retriever) BySource(ctx context.Context, sourceId string) ([]store.Chunk, error) {
	return r.store.Find(ctx, map[string]string{"source_id": sourceId})
}

// ByProvider returns documents about a provider, optionally narrowed to one
// document type.
func (r *Retriever) ByProvider(ctx context.Context, providerName string, docType string) ([]store.Chunk, error) {
	filter := map[string]string{"provider_name": providerName}
	if len(docType) > 0 {
		filter["document_type"] = docType
	}
	return r.store.Find(ctx, filter)
}

// CountByTeam counts Jira chunks per team.
func (r *Retriever) CountByTeam(ctx context.Context) (map[string]int64, error) {
	return r.store.CountBy(ctx, "team", map[string]string{"document_type": document.TypeJira})
}

// CountByProvider counts Jira chunks per payment provider.
func (r *Retriever) CountByProvider(ctx context.Context) (map[string]int64, error) {
	return r.store.CountBy(ctx, "provider_name", map[string]string{"document_type": document.TypeJira})
}

// ProvidersWithCapability searches Confluence documentation for a capability
// (say "PIX") and reports which providers' docs surfaced.
func (r *Retriever) ProvidersWithCapability(ctx context.Context, capability string) ([]string, error) {
	results, err := r.Search(
		ctx,
		capability,
		WithFilter(map[string]string{"document_type": document.TypeConfluence}),
		WithSearchTopK(20),
	)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var providers []string

	for _, chunk := range results {
		provider := document.String(chunk.Metadata, "provider_name")
		if len(provider) == 0 {
			continue
		}
		if _, ok := seen[provider]; ok {
			continue
		}
		seen[provider] = struct{}{}
		providers = append(providers, provider)
	}

	return providers, nil
}

// TicketBundle fetches a ticket's chunks plus the Confluence docs for the
// provider named in the ticket metadata. A nil bundle means the ticket is
// not in the store.
func (r *Retriever) TicketBundle(ctx context.Context, ticketId string) (*TicketBundle, error) {
	chunks, err := r.BySource(ctx, ticketId)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return nil, nil
	}

	bundle := &TicketBundle{
		TicketId: ticketId,
		Chunks:   chunks,
	}

	bundle.ProviderName = document.String(chunks[0].Metadata, "provider_name")
	if len(bundle.ProviderName) == 0 {
		return bundle, nil
	}

	docs, err := r.ByProvider(ctx, bundle.ProviderName, document.TypeConfluence)
	if err != nil {
		return nil, err
	}
	bundle.ProviderDocs = docs

	return bundle, nil
}
