// Package rag wires retrieval, generation, and analytics routing into one
// question-answering pipeline over ingested documentation.
package rag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/w-h-a/rag/document"
	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/retriever"
	"github.com/w-h-a/rag/store"
)

const noContextAnswer = "I couldn't find relevant documents to answer your question."

const answerPrompt = `You are an expert assistant in fintech payments platform technical documentation.

Your task is to answer questions based ONLY on the context provided below.

IMPORTANT RULES:
1. Only use information present in the context
2. If the information is not in the context, say you don't have it
3. Cite sources when relevant (mention the document ID)
4. Respond in English clearly and concisely
5. If you mention a payment provider, include relevant technical details (API, credentials, supported countries, etc.)

CONTEXT:
%s

USER QUESTION:
%s

RESPONSE:`

type Pipeline struct {
	retriever *retriever.Retriever
	generator generator.Generator
	topK      int
}

func New(r *retriever.Retriever, g generator.Generator, topK int) *Pipeline {
	if r == nil {
		panic("retriever is required")
	}

	if g == nil {
		panic("generator is required")
	}

	if topK <= 0 {
		topK = 5
	}

	return &Pipeline{
		retriever: r,
		generator: g,
		topK:      topK,
	}
}

func (p *Pipeline) Retriever() *retriever.Retriever {
	return p.retriever
}

// Query runs the plain retrieve-then-generate path.
func (p *Pipeline) Query(ctx context.Context, query string, opts ...retriever.SearchOption) (*Answer, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, errors.New("query is required")
	}

	searchOpts := append([]retriever.SearchOption{retriever.WithSearchTopK(p.topK)}, opts...)

	docs, err := p.retriever.Search(ctx, query, searchOpts...)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return &Answer{
			Text:      noContextAnswer,
			QueryType: QueryTypeSemantic,
		}, nil
	}

	answer, err := p.Generate(ctx, query, docs)
	if err != nil {
		return nil, err
	}

	return answer, nil
}

// Generate formats the retrieved chunks into a prompt and asks the model.
func (p *Pipeline) Generate(ctx context.Context, query string, docs []store.Chunk) (*Answer, error) {
	prompt := fmt.Sprintf(answerPrompt, buildContext(docs), query)

	rsp, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{
		Text:          rsp.Text,
		Sources:       extractSources(docs),
		RetrievedDocs: len(docs),
		Usage: Usage{
			InputTokens:  rsp.InputTokens,
			OutputTokens: rsp.OutputTokens,
		},
		QueryType: QueryTypeSemantic,
	}, nil
}

func buildContext(docs []store.Chunk) string {
	var sb bytes.Buffer

	for i, doc := range docs {
		docType := document.String(doc.Metadata, "document_type")
		if len(docType) == 0 {
			docType = "unknown"
		}

		sourceId := document.String(doc.Metadata, "source_id")
		if len(sourceId) == 0 {
			sourceId = "unknown"
		}

		sb.WriteString(fmt.Sprintf("[Document %d - %s: %s]\n", i+1, strings.ToUpper(docType), sourceId))
		sb.WriteString(doc.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func extractSources(docs []store.Chunk) []Source {
	var sources []Source
	seen := map[string]struct{}{}

	for _, doc := range docs {
		sourceId := document.String(doc.Metadata, "source_id")
		if len(sourceId) == 0 {
			continue
		}
		if _, ok := seen[sourceId]; ok {
			continue
		}
		seen[sourceId] = struct{}{}

		sources = append(sources, Source{
			Id:       sourceId,
			Type:     document.String(doc.Metadata, "document_type"),
			Provider: document.String(doc.Metadata, "provider_name"),
			File:     document.String(doc.Metadata, "source_file"),
		})
	}

	return sources
}
