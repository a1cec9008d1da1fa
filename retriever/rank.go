package retriever

import (
	"math"

	"github.com/w-h-a/rag/store"
)

// Select re-ranks candidates with maximal marginal relevance: each round
// picks the candidate maximizing lambda*relevance - (1-lambda)*redundancy,
// where redundancy is the max similarity to anything already selected.
func Select(candidates []store.Chunk, queryVector []float32, limit int, lambda float64) []store.Chunk {
	if len(candidates) <= limit {
		return candidates
	}

	if lambda < 0 {
		lambda = 0
	} else if lambda > 1 {
		lambda = 1
	}

	selected := make([]store.Chunk, 0, limit)
	remaining := append([]store.Chunk(nil), candidates...)

	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := -1
		best := math.Inf(-1)

		for i, cand := range remaining {
			relevance := CosineSimilarity(queryVector, cand.Embedding)

			maxSim := 0.0
			for _, sel := range selected {
				if sim := CosineSimilarity(cand.Embedding, sel.Embedding); sim > maxSim {
					maxSim = sim
				}
			}

			current := (lambda * relevance) - ((1 - lambda) * maxSim)

			if current > best {
				best = current
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			break
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
