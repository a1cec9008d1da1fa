package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/rag/store"
)

func seed(t *testing.T) store.Store {
	t.Helper()

	s := NewStore()

	_, err := s.Insert(context.Background(), []store.Chunk{
		{
			Content:   "alpha",
			Embedding: []float32{1, 0},
			Metadata:  map[string]any{"document_type": "jira", "team": "Core", "source_id": "CORECM-1"},
		},
		{
			Content:   "beta",
			Embedding: []float32{0, 1},
			Metadata:  map[string]any{"document_type": "confluence", "provider_name": "Adyen", "source_id": "42"},
		},
	})
	require.NoError(t, err)

	return s
}

func TestInsertAssignsIds(t *testing.T) {
	s := NewStore()

	ids, err := s.Insert(context.Background(), []store.Chunk{{Content: "x", Embedding: []float32{1}}})

	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0])
}

func TestSearchOrdersByScore(t *testing.T) {
	s := seed(t)

	results, err := s.Search(context.Background(), []float32{1, 0}, nil, 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Content)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchAppliesFilter(t *testing.T) {
	s := seed(t)

	results, err := s.Search(context.Background(), []float32{1, 0}, map[string]string{"document_type": "confluence"}, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "beta", results[0].Content)
}

func TestCount(t *testing.T) {
	s := seed(t)

	total, err := s.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	jira, err := s.Count(context.Background(), map[string]string{"document_type": "jira"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, jira)
}

func TestCountBySkipsMissingField(t *testing.T) {
	s := seed(t)

	counts, err := s.CountBy(context.Background(), "team", nil)

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Core": 1}, counts)
}

func TestDistinct(t *testing.T) {
	s := seed(t)

	providers, err := s.Distinct(context.Background(), "provider_name")

	require.NoError(t, err)
	assert.Equal(t, []string{"Adyen"}, providers)
}

func TestClear(t *testing.T) {
	s := seed(t)

	deleted, err := s.Clear(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	total, err := s.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}
