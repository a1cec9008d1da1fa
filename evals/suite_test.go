package evals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/retriever"
	"github.com/w-h-a/rag/store"
	"github.com/w-h-a/rag/store/memory"
)

type suiteEmbedder struct{}

func (suiteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (suiteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func TestRun(t *testing.T) {
	s := memory.NewStore()

	_, err := s.Insert(context.Background(), []store.Chunk{
		{
			Content:   "SafetyPay supports bank transfer payments.",
			Embedding: []float32{1, 0},
			Metadata:  map[string]any{"source_id": "3702794", "document_type": "confluence"},
		},
	})
	require.NoError(t, err)

	pipeline := rag.New(retriever.New(s, suiteEmbedder{}), &scriptedGenerator{replies: []string{"an answer"}}, 5)

	judge := NewJudge(&scriptedGenerator{replies: []string{
		"RELEVANT",
		"VERDICT: GROUNDED\nSCORE: 1.0\nANALYSIS: Fully supported.",
	}})

	report, err := Run(context.Background(), pipeline, judge, []string{"What is SafetyPay?"})

	require.NoError(t, err)
	require.Len(t, report.Queries, 1)
	assert.Equal(t, 1, report.Evaluated)
	assert.Equal(t, "an answer", report.Queries[0].Answer)
	assert.Empty(t, report.Queries[0].Skipped)
	assert.InDelta(t, 1.0, report.AvgPrecision, 1e-9)
	assert.InDelta(t, 1.0, report.AvgGroundedness, 1e-9)
	assert.Equal(t, "GROUNDED", report.Queries[0].Groundedness.Verdict)
}

func TestRunSkipsAnalyticalQueries(t *testing.T) {
	s := memory.NewStore()

	pipeline := rag.New(retriever.New(s, suiteEmbedder{}), &scriptedGenerator{replies: []string{"unused"}}, 5)
	judge := NewJudge(&scriptedGenerator{replies: []string{"RELEVANT"}})

	report, err := Run(context.Background(), pipeline, judge, []string{"cuantos tickets hay"})

	require.NoError(t, err)
	require.Len(t, report.Queries, 1)
	assert.Zero(t, report.Evaluated)
	assert.Equal(t, "analytical query", report.Queries[0].Skipped)
	assert.Nil(t, report.Queries[0].Precision)
}

func TestRunSkipsEmptyRetrieval(t *testing.T) {
	s := memory.NewStore()

	pipeline := rag.New(retriever.New(s, suiteEmbedder{}), &scriptedGenerator{replies: []string{"unused"}}, 5)
	judge := NewJudge(&scriptedGenerator{replies: []string{"RELEVANT"}})

	report, err := Run(context.Background(), pipeline, judge, nil)

	require.NoError(t, err)
	assert.Len(t, report.Queries, len(TestQueries))
	assert.Zero(t, report.Evaluated)
	for _, q := range report.Queries {
		assert.Equal(t, "no documents retrieved", q.Skipped)
	}
}
