package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	manualbook "github.com/RaymonMudrig/ManualBook"
	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/ai/openai"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/ingestion"
	"github.com/RaymonMudrig/ManualBook/retrieval"
	"github.com/RaymonMudrig/ManualBook/websearch"
)

func main() {
	app := &cli.App{
		Name:  "manualbook",
		Usage: "Query-understanding retrieval over annotated manuals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build the article catalog from markdown documents and ingest it",
				ArgsUsage: "<docs-dir>",
				Action:    buildCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum chunk length in characters",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Embedding worker pool size",
					},
				}, aiFlags()...),
			},
			{
				Name:      "classify",
				Usage:     "Classify a query without running retrieval",
				ArgsUsage: "<query>",
				Action:    classifyCommand,
				Flags:     aiFlags(),
			},
			{
				Name:      "query",
				Usage:     "Run one query through the full retrieval pipeline",
				ArgsUsage: "<query>",
				Action:    queryCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results per retrieval tier",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum chunk similarity for the raw retrieval tier",
					},
					&cli.StringFlag{
						Name:    "serper-key",
						Usage:   "Serper.dev API key for the web search tier",
						EnvVars: []string{"SERPER_API_KEY"},
					},
				}, aiFlags()...),
			},
			{
				Name:   "serve",
				Usage:  "Serve the retrieval pipeline over HTTP",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8000",
					},
					&cli.StringFlag{
						Name:    "serper-key",
						Usage:   "Serper.dev API key for the web search tier",
						EnvVars: []string{"SERPER_API_KEY"},
					},
				}, aiFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "Host URL for both the embedding and chat services",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "chat-host",
			Usage: "Chat service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	var opts []ai.ConfigOption
	if host := c.String("ai-host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if host := c.String("chat-host"); host != "" {
		opts = append(opts, ai.WithChatHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("chat-model"); model != "" {
		opts = append(opts, ai.WithChatModel(model))
	}
	return ai.NewConfig(opts...)
}

func engineOptionsFromFlags(c *cli.Context) []manualbook.EngineOption {
	var opts []manualbook.EngineOption
	if c.Int("top-k") > 0 {
		opts = append(opts, manualbook.WithTopK(c.Int("top-k")))
	}
	if c.Float64("threshold") > 0 {
		opts = append(opts, manualbook.WithMinSimilarity(float32(c.Float64("threshold"))))
	}

	var searcherOpts []websearch.SearcherOption
	if key := c.String("serper-key"); key != "" {
		searcherOpts = append(searcherOpts, websearch.WithAPIKey(key))
	}
	opts = append(opts, manualbook.WithSearcher(websearch.NewSearcher(searcherOpts...)))
	return opts
}

func pipelineOptionsFromFlags(c *cli.Context) []ingestion.Option {
	var opts []ingestion.Option
	if size := c.Int("chunk-size"); size > 0 {
		opts = append(opts, ingestion.WithChunkSize(size))
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}
	return opts
}

// buildCatalogFromDir reads every .md file under dir into a catalog.
func buildCatalogFromDir(dir string) (*catalog.Catalog, error) {
	builder := catalog.NewBuilder()
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		builder.AddMarkdown(rel, src)
		count++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no markdown files found under %s", dir)
	}

	return builder.Build(), nil
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	docsDir := c.Args().First()
	if docsDir == "" {
		return fmt.Errorf("docs directory argument is required")
	}

	cat, err := buildCatalogFromDir(docsDir)
	if err != nil {
		return err
	}
	for _, warning := range cat.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	db, err := manualbook.NewDatabase(c.String("db"), manualbook.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(pipelineOptionsFromFlags(c)...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	stats, err := pipeline.IngestCatalog(ctx, cat)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Articles: %d\nChunks: %d\nFailed: %d\n",
		stats.Articles, stats.Chunks, stats.FailedArticles)
	return nil
}

func classifyCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query argument is required")
	}

	config := aiConfigFromFlags(c)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(config)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	classifier, err := retrieval.NewClassifier(provider.QueryClassifier())
	if err != nil {
		return err
	}

	classification := classifier.Classify(ctx, query)
	return printJSON(classification)
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query argument is required")
	}

	db, err := manualbook.NewDatabase(c.String("db"), manualbook.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine, err := db.NewEngine(engineOptionsFromFlags(c)...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	resp, err := engine.HandleQuery(ctx, query, manualbook.QueryOptions{})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func serveCommand(c *cli.Context) error {
	db, err := manualbook.NewDatabase(c.String("db"), manualbook.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine, err := db.NewEngine(engineOptionsFromFlags(c)...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	server := newServer(engine, slog.Default().With("component", "http"))
	addr := c.String("addr")
	fmt.Fprintf(os.Stderr, "Listening on %s\n", addr)
	return server.listen(addr)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
