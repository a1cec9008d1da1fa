package store

// Chunk is one stored slice of a source document. Score is only populated on
// records returned from Search.
type Chunk struct {
	Id        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
	Score     float32
}
