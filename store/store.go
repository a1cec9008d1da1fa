package store

import "context"

// Store is the vector store behind the pipeline. Filters are equality
// matches on metadata fields, keyed by the bare field name ("team",
// "document_type"); each backend translates them to its own query shape.
type Store interface {
	Insert(ctx context.Context, chunks []Chunk) ([]string, error)
	Search(ctx context.Context, vector []float32, filter map[string]string, limit int) ([]Chunk, error)
	Find(ctx context.Context, filter map[string]string) ([]Chunk, error)
	Count(ctx context.Context, filter map[string]string) (int64, error)
	CountBy(ctx context.Context, field string, filter map[string]string) (map[string]int64, error)
	Distinct(ctx context.Context, field string) ([]string, error)
	Clear(ctx context.Context) (int64, error)
}
