package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/chunker"
	"github.com/w-h-a/rag/config"
	"github.com/w-h-a/rag/embedder"
	googleembedder "github.com/w-h-a/rag/embedder/google"
	localembedder "github.com/w-h-a/rag/embedder/local"
	openaiembedder "github.com/w-h-a/rag/embedder/openai"
	voyageembedder "github.com/w-h-a/rag/embedder/voyage"
	"github.com/w-h-a/rag/evals"
	"github.com/w-h-a/rag/extract"
	"github.com/w-h-a/rag/generator"
	anthropicgenerator "github.com/w-h-a/rag/generator/anthropic"
	googlegenerator "github.com/w-h-a/rag/generator/google"
	openaigenerator "github.com/w-h-a/rag/generator/openai"
	"github.com/w-h-a/rag/ingest"
	"github.com/w-h-a/rag/loader"
	"github.com/w-h-a/rag/retriever"
	"github.com/w-h-a/rag/server"
	"github.com/w-h-a/rag/store"
	memorystore "github.com/w-h-a/rag/store/memory"
	mongostore "github.com/w-h-a/rag/store/mongo"
	postgresstore "github.com/w-h-a/rag/store/postgres"
)

type cli struct {
	EmbeddingProvider string `default:"openai" enum:"local,openai,voyage,google" help:"Embedding backend to use."`

	Ingest      ingestCmd      `cmd:"" help:"Ingest a directory of PDF exports into the vector store."`
	Query       queryCmd       `cmd:"" help:"Ask one question against the knowledge base."`
	Eval        evalCmd        `cmd:"" help:"Evaluate retrieval precision and answer groundedness."`
	Interactive interactiveCmd `cmd:"" help:"Ask questions in a loop."`
	Stats       statsCmd       `cmd:"" help:"Show what the store holds."`
	Serve       serveCmd       `cmd:"" help:"Serve the pipeline over HTTP."`
}

type runtime struct {
	cfg               *config.Config
	embeddingProvider string
}

func (rt *runtime) newStore() store.Store {
	switch rt.cfg.StoreBackend {
	case "postgres":
		return postgresstore.NewStore(
			store.WithLocation(rt.cfg.PostgresURI),
		)
	case "memory":
		return memorystore.NewStore()
	default:
		return mongostore.NewStore(
			store.WithLocation(rt.cfg.MongoURI),
			store.WithDatabase(rt.cfg.MongoDatabase),
			store.WithCollection(rt.cfg.MongoCollection),
			store.WithIndex(rt.cfg.VectorIndexName),
		)
	}
}

func (rt *runtime) newEmbedder() embedder.Embedder {
	switch rt.embeddingProvider {
	case "local":
		return localembedder.NewEmbedder(
			embedder.WithLocation(rt.cfg.LocalEmbeddingURL),
			embedder.WithModel(rt.cfg.LocalEmbeddingName),
		)
	case "voyage":
		return voyageembedder.NewEmbedder(
			embedder.WithApiKey(rt.cfg.VoyageKey),
			embedder.WithModel("voyage-2"),
		)
	case "google":
		return googleembedder.NewEmbedder(
			embedder.WithApiKey(rt.cfg.GoogleKey),
			embedder.WithModel("text-embedding-004"),
		)
	default:
		return openaiembedder.NewEmbedder(
			embedder.WithApiKey(rt.cfg.OpenAIKey),
			embedder.WithModel(rt.cfg.EmbeddingModel),
		)
	}
}

func (rt *runtime) newGenerator(model string) generator.Generator {
	switch rt.cfg.GeneratorProvider {
	case "anthropic":
		return anthropicgenerator.NewGenerator(
			generator.WithApiKey(rt.cfg.AnthropicKey),
			generator.WithModel(model),
		)
	case "google":
		return googlegenerator.NewGenerator(
			generator.WithApiKey(rt.cfg.GoogleKey),
			generator.WithModel(model),
		)
	default:
		return openaigenerator.NewGenerator(
			generator.WithApiKey(rt.cfg.OpenAIKey),
			generator.WithModel(model),
		)
	}
}

func (rt *runtime) newProcessor(s store.Store, e embedder.Embedder, withExtractor bool) *ingest.Processor {
	var extractor *extract.ProviderExtractor
	if withExtractor {
		extractor = extract.NewProviderExtractor(rt.newGenerator(rt.cfg.ExtractionModel))
	}

	return ingest.NewProcessor(
		s,
		e,
		chunker.New(rt.cfg.ChunkSize, rt.cfg.ChunkOverlap),
		extractor,
		loader.NewPDF(),
		rt.cfg.TeamPatterns,
	)
}

func (rt *runtime) newPipeline(s store.Store, e embedder.Embedder) *rag.Pipeline {
	r := retriever.New(
		s,
		e,
		retriever.WithTopK(rt.cfg.TopK),
		retriever.WithLambda(rt.cfg.SimilarityThreshold),
	)

	return rag.New(r, rt.newGenerator(rt.cfg.GenerationModel), rt.cfg.TopK)
}

type ingestCmd struct {
	Path  string `arg:"" type:"existingdir" help:"Directory containing PDF exports."`
	Clear bool   `help:"Clear the store before ingesting."`
}

func (c *ingestCmd) Run(rt *runtime) error {
	ctx := context.Background()

	s := rt.newStore()
	processor := rt.newProcessor(s, rt.newEmbedder(), true)

	if c.Clear {
		deleted, err := processor.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("🧹 Cleared %d chunks\n", deleted)
	}

	fmt.Printf("📥 Ingesting PDFs from %s ...\n", c.Path)

	result, err := processor.ProcessDirectory(ctx, c.Path)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Processed %d/%d documents (%d chunks) in %s\n", result.Processed, result.Found, result.Chunks, result.Duration.Round(10*time.Millisecond))
	if result.Failed > 0 {
		fmt.Printf("⚠️ %d documents failed\n", result.Failed)
	}

	stats, err := processor.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\n📊 Collection statistics:")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(stats)
}

type queryCmd struct {
	Question []string `arg:"" help:"The question to ask."`
	TopK     int      `help:"Override how many chunks to retrieve."`
	Json     bool     `help:"Print the full answer as JSON."`
}

func (c *queryCmd) Run(rt *runtime) error {
	ctx := context.Background()

	if c.TopK > 0 {
		rt.cfg.TopK = c.TopK
	}

	pipeline := rt.newPipeline(rt.newStore(), rt.newEmbedder())

	answer, err := pipeline.Ask(ctx, strings.Join(c.Question, " "))
	if err != nil {
		return err
	}

	if c.Json {
		return json.NewEncoder(os.Stdout).Encode(answer)
	}

	printAnswer(answer)

	return nil
}

type evalCmd struct {
	Query []string `help:"Override the default evaluation queries."`
	Json  bool     `help:"Print the report as JSON."`
}

func (c *evalCmd) Run(rt *runtime) error {
	ctx := context.Background()

	pipeline := rt.newPipeline(rt.newStore(), rt.newEmbedder())
	judge := evals.NewJudge(rt.newGenerator(rt.cfg.ExtractionModel))

	fmt.Println("🧪 Running evaluation suite ...")

	report, err := evals.Run(ctx, pipeline, judge, c.Query)
	if err != nil {
		return err
	}

	if c.Json {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	for _, q := range report.Queries {
		fmt.Printf("\n🔍 %s\n", q.Query)
		if len(q.Skipped) > 0 {
			fmt.Printf("   skipped: %s\n", q.Skipped)
			continue
		}
		fmt.Printf("   precision: %.2f (%d/%d relevant)\n", q.Precision.Precision, q.Precision.Relevant, q.Precision.Retrieved)
		fmt.Printf("   groundedness: %s (%.2f)\n", q.Groundedness.Verdict, q.Groundedness.Score)
		if len(q.Groundedness.Analysis) > 0 {
			fmt.Printf("   analysis: %s\n", q.Groundedness.Analysis)
		}
	}

	fmt.Printf("\n📊 %d queries evaluated | avg precision %.2f | avg groundedness %.2f\n", report.Evaluated, report.AvgPrecision, report.AvgGroundedness)

	return nil
}

type interactiveCmd struct{}

func (c *interactiveCmd) Run(rt *runtime) error {
	ctx := context.Background()

	pipeline := rt.newPipeline(rt.newStore(), rt.newEmbedder())

	fmt.Println("💬 Type your questions ('quit' to exit).")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if len(question) == 0 {
			continue
		}
		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			fmt.Println("\n👋 Goodbye!")
			return scanner.Err()
		}

		answer, err := pipeline.Ask(ctx, question)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			continue
		}

		printAnswer(answer)
	}

	fmt.Println("\n👋 Goodbye!")

	return scanner.Err()
}

type statsCmd struct {
	Json bool `help:"Print stats as JSON."`
}

func (c *statsCmd) Run(rt *runtime) error {
	ctx := context.Background()

	s := rt.newStore()
	processor := rt.newProcessor(s, rt.newEmbedder(), false)

	stats, err := processor.Stats(ctx)
	if err != nil {
		return err
	}

	if c.Json {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	fmt.Printf("📊 %d chunks total (%d jira, %d confluence)\n", stats.TotalChunks, stats.JiraChunks, stats.ConfluenceChunks)
	if len(stats.Teams) > 0 {
		fmt.Printf("   teams: %s\n", strings.Join(stats.Teams, ", "))
	}
	if len(stats.Providers) > 0 {
		fmt.Printf("   providers: %s\n", strings.Join(stats.Providers, ", "))
	}

	return nil
}

type serveCmd struct {
	Address string `default:":8087" help:"Address to listen on."`
}

func (c *serveCmd) Run(rt *runtime) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := rt.newStore()
	e := rt.newEmbedder()

	srv := server.NewServer(
		rt.newPipeline(s, e),
		rt.newProcessor(s, e, false),
		server.WithAddress(c.Address),
	)

	return srv.Run(ctx)
}

func printAnswer(answer *rag.Answer) {
	fmt.Printf("\n%s\n", answer.Text)

	if len(answer.Sources) > 0 {
		fmt.Println("\n📚 Sources:")
		for _, src := range answer.Sources {
			line := fmt.Sprintf("- %s (%s)", src.Id, src.Type)
			if len(src.Provider) > 0 {
				line += fmt.Sprintf(" [%s]", src.Provider)
			}
			fmt.Println(line)
		}
	}

	if answer.Usage.InputTokens > 0 || answer.Usage.OutputTokens > 0 {
		fmt.Printf("\n🪙 %d input / %d output tokens\n", answer.Usage.InputTokens, answer.Usage.OutputTokens)
	}
}

func main() {
	var c cli

	ctx := kong.Parse(&c,
		kong.Name("rag"),
		kong.Description("Question answering over Jira and Confluence PDF exports."),
		kong.UsageOnError(),
	)

	rt := &runtime{
		cfg:               config.Load(),
		embeddingProvider: c.EmbeddingProvider,
	}

	if err := ctx.Run(rt); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}
