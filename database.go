package manualbook

import (
	"context"
	"log/slog"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/ai/openai"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/ingestion"
	"github.com/RaymonMudrig/ManualBook/storage"
	"github.com/RaymonMudrig/ManualBook/storage/badger"
)

// Database bundles the storage backend, repositories, and AI provider
// behind one handle, with factories for the ingestion pipeline and the
// query engine.
type Database struct {
	backend     *badger.Backend
	chunkRepo   storage.ChunkRepository
	articleRepo storage.CatalogRepository
	provider    ai.Provider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider instead of constructing
// one from configuration. Used by tests with the mock provider.
func WithAIProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens or creates a store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)
	articleRepo := badger.NewArticleRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:     backend,
		chunkRepo:   chunkRepo,
		articleRepo: articleRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.articleRepo.Close(); err != nil {
		db.logger.Error("error closing article repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) CatalogRepository() storage.CatalogRepository {
	return db.articleRepo
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.articleRepo, db.provider, opts...)
}

// NewEngine creates a query engine. If the store already holds an ingested
// catalog, the engine starts with a generation reconstructed from it;
// otherwise install one after ingestion.
func (db *Database) NewEngine(opts ...EngineOption) (*Engine, error) {
	engine, err := NewEngine(db.chunkRepo, db.provider, opts...)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	articles, err := db.articleRepo.ListArticles(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) > 0 {
		if err := engine.InstallCatalog(ctx, catalog.FromArticles(articles)); err != nil {
			return nil, err
		}
	}

	return engine, nil
}
