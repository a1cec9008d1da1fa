package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "mongo", cfg.StoreBackend)
	assert.Equal(t, "rag", cfg.MongoDatabase)
	assert.Equal(t, "documents", cfg.MongoCollection)
	assert.Equal(t, "vector_index", cfg.VectorIndexName)
	assert.Equal(t, 1500, cfg.ChunkSize)
	assert.Equal(t, 300, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.InDelta(t, 0.7, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o", cfg.GenerationModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ExtractionModel)
	assert.Equal(t, "openai", cfg.GeneratorProvider)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "800")
	t.Setenv("TOP_K", "3")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")

	cfg := Load()

	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.InDelta(t, 0.5, cfg.SimilarityThreshold, 1e-9)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 1500, cfg.ChunkSize)
}

func TestDefaultTeamPatternsOrder(t *testing.T) {
	// TST12 must come before TST so the longer prefix wins.
	var tstIdx, tst12Idx int
	for i, p := range DefaultTeamPatterns {
		switch p.Prefix {
		case "TST":
			tstIdx = i
		case "TST12":
			tst12Idx = i
		}
	}

	assert.Less(t, tst12Idx, tstIdx)
}
