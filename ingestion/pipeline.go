package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
)

// Pipeline ingests a built catalog into the chunk and article stores.
type Pipeline struct {
	chunkRepository   storage.ChunkRepository
	catalogRepository storage.CatalogRepository
	embedder          ai.Embedder
	pool              *ants.Pool
	chunkSize         int
	logger            *slog.Logger
}

// Stats summarizes one ingestion run.
type Stats struct {
	Articles       int
	Chunks         int
	FailedArticles int
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	catalogRepository storage.CatalogRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if catalogRepository == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunkRepository:   chunkRepository,
		catalogRepository: catalogRepository,
		embedder:          provider.Embedder(),
		pool:              pool,
		chunkSize:         defaultChunkSize,
		logger:            slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestCatalog replaces the stored articles and chunks with the contents
// of the given catalog. Articles whose embedding fails are logged and
// skipped rather than aborting the run; the count is reported in Stats.
// IngestCatalog blocks until every article is processed.
func (p *Pipeline) IngestCatalog(ctx context.Context, cat *catalog.Catalog) (Stats, error) {
	articles := cat.Articles()
	p.logger.Info("ingesting catalog", "articles", len(articles))

	if err := p.chunkRepository.DeleteAll(ctx); err != nil {
		return Stats{}, fmt.Errorf("clearing chunks: %w", err)
	}
	if err := p.catalogRepository.DeleteAll(ctx); err != nil {
		return Stats{}, fmt.Errorf("clearing articles: %w", err)
	}

	if err := p.catalogRepository.PutArticles(ctx, articles...); err != nil {
		return Stats{}, fmt.Errorf("storing articles: %w", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		chunks int
		failed int
	)

	for _, article := range articles {
		article := article
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			n, err := p.ingestArticle(ctx, article)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Error("error ingesting article", "article_id", article.ID, "err", err)
				failed++
				return
			}
			chunks += n
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
			p.logger.Error("error submitting article to pool", "article_id", article.ID, "err", err)
		}
	}

	wg.Wait()

	stats := Stats{
		Articles:       len(articles) - failed,
		Chunks:         chunks,
		FailedArticles: failed,
	}
	p.logger.Info("catalog ingestion complete",
		"articles", stats.Articles, "chunks", stats.Chunks, "failed", stats.FailedArticles)
	return stats, nil
}

// ingestArticle chunks, embeds, and stores one article's content.
// The embedding call is retried once before the article is given up on.
func (p *Pipeline) ingestArticle(ctx context.Context, article *core.Article) (int, error) {
	texts := splitIntoChunks(article.Content, p.chunkSize)
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Warn("embedding failed, retrying once", "article_id", article.ID, "err", err)
		vectors, err = p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, err
		}
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(vectors))
	}

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			ID:        core.IDFromContent(article.ID + "\x00" + text),
			ArticleID: article.ID,
			Seq:       i,
			Text:      text,
			Intent:    article.Intent,
			Category:  article.Category,
			Vector:    vectors[i],
		}
	}

	if err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
