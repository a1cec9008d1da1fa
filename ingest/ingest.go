// Package ingest turns PDF exports into embedded chunks in the vector store.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/w-h-a/rag/chunker"
	"github.com/w-h-a/rag/config"
	"github.com/w-h-a/rag/document"
	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/extract"
	"github.com/w-h-a/rag/loader"
	"github.com/w-h-a/rag/store"
)

// Result summarizes one directory ingestion run.
type Result struct {
	Found     int           `json:"found"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Chunks    int           `json:"chunks"`
	Duration  time.Duration `json:"duration"`
}

// Stats describes what the store currently holds.
type Stats struct {
	TotalChunks      int64    `json:"total_chunks"`
	JiraChunks       int64    `json:"jira_chunks"`
	ConfluenceChunks int64    `json:"confluence_chunks"`
	Teams            []string `json:"teams"`
	Providers        []string `json:"providers"`
}

// Processor runs the full ingestion pipeline: extract text, derive metadata,
// chunk, embed, store.
type Processor struct {
	store     store.Store
	embedder  embedder.Embedder
	splitter  chunker.Splitter
	extractor *extract.ProviderExtractor
	loader    *loader.PDF
	patterns  []config.TeamPattern
}

func NewProcessor(s store.Store, e embedder.Embedder, splitter chunker.Splitter, extractor *extract.ProviderExtractor, pdf *loader.PDF, patterns []config.TeamPattern) *Processor {
	if s == nil {
		panic("store is required")
	}

	if e == nil {
		panic("embedder is required")
	}

	if pdf == nil {
		pdf = loader.NewPDF()
	}

	if len(patterns) == 0 {
		patterns = config.DefaultTeamPatterns
	}

	return &Processor{
		store:     s,
		embedder:  e,
		splitter:  splitter,
		extractor: extractor,
		loader:    pdf,
		patterns:  patterns,
	}
}

// ProcessDirectory ingests every PDF under dir, recursively. One bad file
// does not stop the run.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	result := &Result{
		Found: len(paths),
	}

	for _, path := range paths {
		chunks, err := p.ProcessDocument(ctx, path)
		if err != nil {
			slog.WarnContext(ctx, "failed to process document", "path", path, "error", err)
			result.Failed++
			continue
		}
		result.Processed++
		result.Chunks += chunks
	}

	result.Duration = time.Since(start)

	return result, nil
}

// ProcessDocument ingests a single PDF and returns how many chunks it stored.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (int, error) {
	text, err := p.loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	filename := filepath.Base(path)

	meta := extract.FromFilename(filename, p.patterns)
	if len(meta.DocumentType) == 0 {
		return 0, fmt.Errorf("unrecognized filename %s", filename)
	}

	switch meta.DocumentType {
	case document.TypeJira:
		meta.Extra = extract.JiraMetadata(text)
	case document.TypeConfluence:
		meta.Extra = extract.ConfluenceMetadata(text)
	}

	if p.extractor != nil {
		provider, err := p.extractor.ProviderName(ctx, text, filename)
		if err != nil {
			slog.WarnContext(ctx, "provider extraction failed", "path", path, "error", err)
		} else {
			meta.ProviderName = provider
		}
	}

	pieces, err := p.splitter.Split(text)
	if err != nil {
		return 0, fmt.Errorf("split %s: %w", filename, err)
	}

	if len(pieces) == 0 {
		return 0, fmt.Errorf("no chunks produced from %s", filename)
	}

	vectors, err := p.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", filename, err)
	}

	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("embedded %d of %d chunks for %s", len(vectors), len(pieces), filename)
	}

	chunks := make([]store.Chunk, len(pieces))
	for i, piece := range pieces {
		m := meta.AsMap()
		m["chunk_index"] = i
		m["total_chunks"] = len(pieces)

		chunks[i] = store.Chunk{
			Content:   piece,
			Metadata:  m,
			Embedding: vectors[i],
		}
	}

	if _, err := p.store.Insert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store %s: %w", filename, err)
	}

	return len(chunks), nil
}

// Clear drops everything from the store and reports how many chunks went.
func (p *Processor) Clear(ctx context.Context) (int64, error) {
	return p.store.Clear(ctx)
}

// Stats reports what the store holds, broken down by type, team, and
// provider.
func (p *Processor) Stats(ctx context.Context) (*Stats, error) {
	total, err := p.store.Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	jira, err := p.store.Count(ctx, map[string]string{"document_type": document.TypeJira})
	if err != nil {
		return nil, err
	}

	confluence, err := p.store.Count(ctx, map[string]string{"document_type": document.TypeConfluence})
	if err != nil {
		return nil, err
	}

	teams, err := p.store.Distinct(ctx, "team")
	if err != nil {
		return nil, err
	}

	providers, err := p.store.Distinct(ctx, "provider_name")
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalChunks:      total,
		JiraChunks:       jira,
		ConfluenceChunks: confluence,
		Teams:            teams,
		Providers:        providers,
	}, nil
}
