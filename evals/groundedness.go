package evals

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/w-h-a/rag/store"
)

// groundedContextLimit bounds how much retrieved context the judge sees.
const groundedContextLimit = 3000

const groundednessPrompt = `You are an expert evaluator of question answering systems.

Given a context, a question, and a generated answer, judge whether the answer is grounded in the context.

CONTEXT:
%s

QUESTION:
%s

ANSWER:
%s

Respond in exactly this format:
VERDICT: one of GROUNDED, PARTIALLY_GROUNDED, NOT_GROUNDED
SCORE: a number between 0.0 and 1.0
ANALYSIS: one or two sentences explaining the verdict`

// fallback scores when the judge returns a verdict without a parseable score.
var verdictScores = map[string]float64{
	"GROUNDED":           1.0,
	"PARTIALLY_GROUNDED": 0.5,
	"NOT_GROUNDED":       0.0,
}

// GroundednessResult is the judge's verdict on whether an answer sticks to
// its retrieved context.
type GroundednessResult struct {
	Query    string  `json:"query"`
	Verdict  string  `json:"verdict"`
	Score    float64 `json:"score"`
	Analysis string  `json:"analysis"`
}

// Groundedness asks the judge whether the answer is supported by the
// retrieved documents.
func (j *Judge) Groundedness(ctx context.Context, query string, answer string, docs []store.Chunk) (*GroundednessResult, error) {
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.Content)
		sb.WriteString("\n\n")
	}

	contextText := sb.String()
	if len(contextText) > groundedContextLimit {
		contextText = contextText[:groundedContextLimit]
	}

	rsp, err := j.generator.Generate(ctx, fmt.Sprintf(groundednessPrompt, contextText, query, answer))
	if err != nil {
		return nil, fmt.Errorf("judge groundedness: %w", err)
	}

	result := parseGroundedness(rsp.Text)
	result.Query = query

	return result, nil
}

func parseGroundedness(text string) *GroundednessResult {
	result := &GroundednessResult{
		Verdict: "NOT_GROUNDED",
	}

	scoreSeen := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "VERDICT:"):
			verdict := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "VERDICT:")))
			if _, ok := verdictScores[verdict]; ok {
				result.Verdict = verdict
			}
		case strings.HasPrefix(line, "SCORE:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "SCORE:"))
			if score, err := strconv.ParseFloat(raw, 64); err == nil && score >= 0 && score <= 1 {
				result.Score = score
				scoreSeen = true
			}
		case strings.HasPrefix(line, "ANALYSIS:"):
			result.Analysis = strings.TrimSpace(strings.TrimPrefix(line, "ANALYSIS:"))
		}
	}

	if !scoreSeen {
		result.Score = verdictScores[result.Verdict]
	}

	return result
}
