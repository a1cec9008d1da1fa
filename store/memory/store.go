package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/w-h-a/rag/document"
	"github.com/w-h-a/rag/retriever"
	"github.com/w-h-a/rag/store"
)

// memoryStore keeps everything in a map. It backs tests and local
// experiments where neither Atlas nor pgvector is around.
type memoryStore struct {
	options store.Options
	chunks  map[string]store.Chunk
	mtx     sync.RWMutex
}

func (s *memoryStore) Insert(ctx context.Context, chunks []store.Chunk) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ids := make([]string, 0, len(chunks))

	for _, c := range chunks {
		id := uuid.New().String()

		cpy := make([]float32, len(c.Embedding))
		copy(cpy, c.Embedding)

		s.chunks[id] = store.Chunk{
			Id:        id,
			Content:   c.Content,
			Metadata:  c.Metadata,
			Embedding: cpy,
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (s *memoryStore) Search(ctx context.Context, vector []float32, filter map[string]string, limit int) ([]store.Chunk, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]store.Chunk, 0, len(s.chunks))

	for _, c := range s.chunks {
		if !matches(c.Metadata, filter) {
			continue
		}
		c.Score = float32(retriever.CosineSimilarity(vector, c.Embedding))
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (s *memoryStore) Find(ctx context.Context, filter map[string]string) ([]store.Chunk, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var out []store.Chunk
	for _, c := range s.chunks {
		if matches(c.Metadata, filter) {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Id < out[j].Id
	})

	return out, nil
}

func (s *memoryStore) Count(ctx context.Context, filter map[string]string) (int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var count int64
	for _, c := range s.chunks {
		if matches(c.Metadata, filter) {
			count++
		}
	}

	return count, nil
}

func (s *memoryStore) CountBy(ctx context.Context, field string, filter map[string]string) (map[string]int64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := map[string]int64{}
	for _, c := range s.chunks {
		if !matches(c.Metadata, filter) {
			continue
		}
		if v := document.String(c.Metadata, field); len(v) > 0 {
			counts[v]++
		}
	}

	return counts, nil
}

func (s *memoryStore) Distinct(ctx context.Context, field string) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	seen := map[string]struct{}{}
	var values []string

	for _, c := range s.chunks {
		v := document.String(c.Metadata, field)
		if len(v) == 0 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	sort.Strings(values)

	return values, nil
}

func (s *memoryStore) Clear(ctx context.Context) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	deleted := int64(len(s.chunks))
	s.chunks = map[string]store.Chunk{}

	return deleted, nil
}

func matches(meta map[string]any, filter map[string]string) bool {
	for k, v := range filter {
		if document.String(meta, k) != v {
			return false
		}
	}
	return true
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	return &memoryStore{
		options: options,
		chunks:  map[string]store.Chunk{},
		mtx:     sync.RWMutex{},
	}
}
