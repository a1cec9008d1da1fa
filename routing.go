package rag

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/w-h-a/rag/store"
)

// ticketPatterns match ticket ids mentioned inside a question. TST projects
// carry a numeric suffix in the prefix itself (TST12-1599).
var ticketPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(AP-\d+)`),
	regexp.MustCompile(`(CORECM-\d+)`),
	regexp.MustCompile(`(PFU-\d+)`),
	regexp.MustCompile(`(TST\d+-\d+)`),
	regexp.MustCompile(`(DEM-\d+)`),
}

var ticketPrefixes = []string{"AP-", "CORECM-", "PFU-", "TST", "DEM-"}

// Ask routes a question before semantic search: counting questions are
// answered from store aggregates, ticket mentions get a ticket lookup, and
// everything else goes through retrieval plus generation.
func (p *Pipeline) Ask(ctx context.Context, query string) (*Answer, error) {
	normalized := normalize(query)

	switch {
	case strings.Contains(normalized, "cuantos") && strings.Contains(normalized, "integraciones"):
		return p.countIntegrations(ctx)
	case strings.Contains(normalized, "cuantos") || strings.Contains(normalized, "contar"):
		return p.countReport(ctx)
	case strings.Contains(normalized, "mas tickets"):
		return p.topProvider(ctx)
	case strings.Contains(normalized, "ticket") && mentionsTicketPrefix(query):
		if ticketId := findTicketId(query); len(ticketId) > 0 {
			return p.askTicket(ctx, query, ticketId)
		}
	}

	return p.Query(ctx, query)
}

func mentionsTicketPrefix(query string) bool {
	upper := strings.ToUpper(query)
	for _, prefix := range ticketPrefixes {
		if strings.Contains(upper, prefix) {
			return true
		}
	}
	return false
}

func findTicketId(query string) string {
	upper := strings.ToUpper(query)
	for _, re := range ticketPatterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[1]
		}
	}
	return ""
}

// normalize lowercases and strips accents so "cuántos" and "cuantos" route
// the same way.
func normalize(query string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(query))
	if err != nil {
		return strings.ToLower(query)
	}
	return out
}

func (p *Pipeline) askTicket(ctx context.Context, query string, ticketId string) (*Answer, error) {
	bundle, err := p.retriever.TicketBundle(ctx, ticketId)
	if err != nil {
		return nil, err
	}

	if bundle == nil {
		return &Answer{
			Text:      fmt.Sprintf("I couldn't find ticket %s in the database.", ticketId),
			QueryType: QueryTypeTicketLookup,
			TicketId:  ticketId,
		}, nil
	}

	docs := append([]store.Chunk(nil), bundle.Chunks...)

	providerDocs := bundle.ProviderDocs
	if len(providerDocs) > 3 {
		providerDocs = providerDocs[:3]
	}
	docs = append(docs, providerDocs...)

	answer, err := p.Generate(ctx, query, docs)
	if err != nil {
		return nil, err
	}

	answer.QueryType = QueryTypeTicketLookup
	answer.TicketId = ticketId
	answer.ProviderName = bundle.ProviderName
	answer.HasProviderDocs = len(bundle.ProviderDocs) > 0

	return answer, nil
}

func (p *Pipeline) countIntegrations(ctx context.Context) (*Answer, error) {
	counts, err := p.retriever.CountByTeam(ctx)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:      fmt.Sprintf("There are %d tickets from the Integrations team in the database.", counts["Integrations"]),
		QueryType: QueryTypeAnalytical,
		Analytics: map[string]any{
			"teams": counts,
		},
	}, nil
}

func (p *Pipeline) countReport(ctx context.Context) (*Answer, error) {
	teamCounts, err := p.retriever.CountByTeam(ctx)
	if err != nil {
		return nil, err
	}

	providerCounts, err := p.retriever.CountByProvider(ctx)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Ticket statistics:\n\n")

	sb.WriteString("By team:\n")
	for _, team := range sortedKeys(teamCounts) {
		sb.WriteString(fmt.Sprintf("- %s: %d tickets\n", team, teamCounts[team]))
	}

	sb.WriteString("\nBy provider:\n")
	for _, provider := range keysByCountDesc(providerCounts) {
		sb.WriteString(fmt.Sprintf("- %s: %d tickets\n", provider, providerCounts[provider]))
	}

	return &Answer{
		Text:      sb.String(),
		QueryType: QueryTypeAnalytical,
		Analytics: map[string]any{
			"teams":     teamCounts,
			"providers": providerCounts,
		},
	}, nil
}

func (p *Pipeline) topProvider(ctx context.Context) (*Answer, error) {
	counts, err := p.retriever.CountByProvider(ctx)
	if err != nil {
		return nil, err
	}

	if len(counts) == 0 {
		return &Answer{
			Text:      "I couldn't find tickets associated with providers.",
			QueryType: QueryTypeAnalytical,
		}, nil
	}

	ranked := keysByCountDesc(counts)
	top := ranked[0]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The provider with the most reported tickets is **%s** with %d tickets.\n\n", top, counts[top]))
	sb.WriteString("Complete ranking:\n")
	for _, provider := range ranked {
		sb.WriteString(fmt.Sprintf("- %s: %d tickets\n", provider, counts[provider]))
	}

	return &Answer{
		Text:      sb.String(),
		QueryType: QueryTypeAnalytical,
		Analytics: map[string]any{
			"providers": counts,
		},
	}, nil
}

func sortedKeys(counts map[string]int64) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// keysByCountDesc orders keys by count, highest first, breaking ties by name
// so output is deterministic.
func keysByCountDesc(counts map[string]int64) []string {
	keys := sortedKeys(counts)
	sort.SliceStable(keys, func(i, j int) bool {
		return counts[keys[i]] > counts[keys[j]]
	})
	return keys
}
