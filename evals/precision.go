// Package evals judges retrieval and answer quality with an LLM.
package evals

import (
	"context"
	"fmt"
	"strings"

	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/store"
)

// judgedContentLimit bounds how much of each retrieved chunk the judge sees.
const judgedContentLimit = 1000

const precisionPrompt = `You are an expert evaluator of information retrieval systems.

Given a user query and a retrieved document, judge whether the document is relevant to answering the query.

QUERY:
%s

RETRIEVED DOCUMENT:
%s

Respond with exactly one of: RELEVANT or NOT RELEVANT.

Verdict:`

// Judgment is one document's relevance verdict.
type Judgment struct {
	SourceId string `json:"source_id"`
	Relevant bool   `json:"relevant"`
	Verdict  string `json:"verdict"`
}

// PrecisionResult is a query's context precision: the share of retrieved
// documents the judge called relevant.
type PrecisionResult struct {
	Query     string     `json:"query"`
	Precision float64    `json:"precision"`
	Retrieved int        `json:"retrieved"`
	Relevant  int        `json:"relevant"`
	Judgments []Judgment `json:"judgments"`
}

// Judge runs LLM verdicts over retrieval results.
type Judge struct {
	generator generator.Generator
}

func NewJudge(g generator.Generator) *Judge {
	if g == nil {
		panic("generator is required")
	}

	return &Judge{
		generator: g,
	}
}

// Precision asks the judge whether each retrieved document is relevant to
// the query and reports the fraction that were.
func (j *Judge) Precision(ctx context.Context, query string, docs []store.Chunk) (*PrecisionResult, error) {
	result := &PrecisionResult{
		Query:     query,
		Retrieved: len(docs),
	}

	for _, doc := range docs {
		content := doc.Content
		if len(content) > judgedContentLimit {
			content = content[:judgedContentLimit]
		}

		rsp, err := j.generator.Generate(ctx, fmt.Sprintf(precisionPrompt, query, content))
		if err != nil {
			return nil, fmt.Errorf("judge relevance: %w", err)
		}

		verdict := strings.ToUpper(strings.TrimSpace(rsp.Text))
		relevant := strings.Contains(verdict, "RELEVANT") && !strings.Contains(verdict, "NOT RELEVANT")

		if relevant {
			result.Relevant++
		}

		sourceId := ""
		if v, ok := doc.Metadata["source_id"].(string); ok {
			sourceId = v
		}

		result.Judgments = append(result.Judgments, Judgment{
			SourceId: sourceId,
			Relevant: relevant,
			Verdict:  verdict,
		})
	}

	if result.Retrieved > 0 {
		result.Precision = float64(result.Relevant) / float64(result.Retrieved)
	}

	return result, nil
}
