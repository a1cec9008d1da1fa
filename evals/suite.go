package evals

import (
	"context"
	"fmt"

	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/retriever"
)

// TestQueries is the default evaluation suite: semantic, factual questions
// that exercise document understanding rather than analytical counting.
var TestQueries = []string{
	"What is SafetyPay?",
	"How to configure SafetyPay webhooks?",
	"Which providers support PIX in Brazil?",
	"What are the available payment methods with Adyen?",
}

// groundednessDocLimit caps how many retrieved docs the groundedness judge
// sees per query.
const groundednessDocLimit = 3

// QueryReport is one query's full evaluation. Skipped explains why a query
// was not judged (analytical routing, or nothing retrieved).
type QueryReport struct {
	Query        string              `json:"query"`
	Answer       string              `json:"answer"`
	Skipped      string              `json:"skipped,omitempty"`
	Precision    *PrecisionResult    `json:"precision,omitempty"`
	Groundedness *GroundednessResult `json:"groundedness,omitempty"`
}

// Report aggregates an evaluation run. Averages cover judged queries only.
type Report struct {
	Queries         []QueryReport `json:"queries"`
	Evaluated       int           `json:"evaluated"`
	AvgPrecision    float64       `json:"avg_precision"`
	AvgGroundedness float64       `json:"avg_groundedness"`
}

// Run evaluates the pipeline over the given queries, judging both retrieval
// precision and answer groundedness. Analytical queries and queries with no
// retrieved documents are reported but not judged.
func Run(ctx context.Context, pipeline *rag.Pipeline, judge *Judge, queries []string) (*Report, error) {
	if len(queries) == 0 {
		queries = TestQueries
	}

	report := &Report{}

	for _, query := range queries {
		answer, err := pipeline.Ask(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", query, err)
		}

		entry := QueryReport{
			Query:  query,
			Answer: answer.Text,
		}

		if answer.QueryType == rag.QueryTypeAnalytical {
			entry.Skipped = "analytical query"
			report.Queries = append(report.Queries, entry)
			continue
		}

		if answer.RetrievedDocs == 0 {
			entry.Skipped = "no documents retrieved"
			report.Queries = append(report.Queries, entry)
			continue
		}

		docs, err := pipeline.Retriever().Search(ctx, query, retriever.WithSearchTopK(5))
		if err != nil {
			return nil, fmt.Errorf("retrieve for %q: %w", query, err)
		}

		precision, err := judge.Precision(ctx, query, docs)
		if err != nil {
			return nil, err
		}

		judged := docs
		if len(judged) > groundednessDocLimit {
			judged = judged[:groundednessDocLimit]
		}

		groundedness, err := judge.Groundedness(ctx, query, answer.Text, judged)
		if err != nil {
			return nil, err
		}

		entry.Precision = precision
		entry.Groundedness = groundedness
		report.Queries = append(report.Queries, entry)

		report.Evaluated++
		report.AvgPrecision += precision.Precision
		report.AvgGroundedness += groundedness.Score
	}

	if report.Evaluated > 0 {
		report.AvgPrecision /= float64(report.Evaluated)
		report.AvgGroundedness /= float64(report.Evaluated)
	}

	return report, nil
}
