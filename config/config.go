package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// TeamPattern maps a Jira project prefix to the team that owns it.
// Patterns are checked in order, so more specific prefixes come first.
type TeamPattern struct {
	Prefix string
	Team   string
}

var DefaultTeamPatterns = []TeamPattern{
	{Prefix: "TST12", Team: "Integrations"},
	{Prefix: "TST", Team: "Integrations"},
	{Prefix: "CORECM", Team: "Core"},
	{Prefix: "PFU", Team: "Postmortem"},
	{Prefix: "AP", Team: "Feature Request"},
	{Prefix: "DEM", Team: "Demand"},
}

type Config struct {
	// API keys
	OpenAIKey    string
	AnthropicKey string
	VoyageKey    string
	GoogleKey    string

	// Store
	StoreBackend    string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	VectorIndexName string
	PostgresURI     string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK                int
	SimilarityThreshold float64

	// Models
	EmbeddingModel     string
	GenerationModel    string
	ExtractionModel    string
	GeneratorProvider  string
	LocalEmbeddingURL  string
	LocalEmbeddingName string

	TeamPatterns []TeamPattern
}

// Load reads configuration from the environment, picking up a .env file if
// one exists in the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		VoyageKey:    os.Getenv("VOYAGE_API_KEY"),
		GoogleKey:    os.Getenv("GOOGLE_API_KEY"),

		StoreBackend:    getEnv("STORE_BACKEND", "mongo"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "rag"),
		MongoCollection: getEnv("MONGODB_COLLECTION", "documents"),
		VectorIndexName: getEnv("VECTOR_INDEX_NAME", "vector_index"),
		PostgresURI:     os.Getenv("POSTGRES_URI"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1500),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 300),

		TopK:                getEnvInt("TOP_K", 5),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.7),

		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		GenerationModel:    getEnv("GENERATION_MODEL", "gpt-4o"),
		ExtractionModel:    getEnv("EXTRACTION_MODEL", "gpt-4o-mini"),
		GeneratorProvider:  getEnv("GENERATOR_PROVIDER", "openai"),
		LocalEmbeddingURL:  getEnv("LOCAL_EMBEDDING_URL", "http://localhost:11434"),
		LocalEmbeddingName: getEnv("LOCAL_EMBEDDING_MODEL", "all-minilm"),

		TeamPatterns: DefaultTeamPatterns,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); len(v) > 0 {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); len(v) > 0 {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); len(v) > 0 {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
