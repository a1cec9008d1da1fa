package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/chunker"
	"github.com/w-h-a/rag/config"
	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/ingest"
	"github.com/w-h-a/rag/loader"
	"github.com/w-h-a/rag/retriever"
	"github.com/w-h-a/rag/store"
	"github.com/w-h-a/rag/store/memory"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeGenerator struct {
	reply string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (*generator.Result, error) {
	return &generator.Result{Text: g.reply}, nil
}

func newTestServer(t *testing.T) *HttpServer {
	t.Helper()

	s := memory.NewStore()

	_, err := s.Insert(context.Background(), []store.Chunk{
		{
			Content:   "SafetyPay supports bank transfers.",
			Embedding: []float32{1, 0},
			Metadata: map[string]any{
				"source_id":     "3702794",
				"document_type": "confluence",
				"provider_name": "SafetyPay",
			},
		},
	})
	require.NoError(t, err)

	pipeline := rag.New(retriever.New(s, fakeEmbedder{}), &fakeGenerator{reply: "an answer"}, 5)

	processor := ingest.NewProcessor(
		s,
		fakeEmbedder{},
		chunker.New(1500, 300),
		nil,
		loader.NewPDF(),
		config.DefaultTeamPatterns,
	)

	return NewServer(pipeline, processor)
}

func TestHandleQuery(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"query":"what is safetypay"}`))
	rec := httptest.NewRecorder()

	srv.srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var answer rag.Answer
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&answer))
	assert.Equal(t, "an answer", answer.Text)
	assert.Equal(t, rag.QueryTypeSemantic, answer.QueryType)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "3702794", answer.Sources[0].Id)
}

func TestHandleQueryMissingQuestion(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	srv.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQueryBadJson(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	srv.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()

	srv.srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats ingest.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.EqualValues(t, 1, stats.TotalChunks)
	assert.Equal(t, []string{"SafetyPay"}, stats.Providers)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
