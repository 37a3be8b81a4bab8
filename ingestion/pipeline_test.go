package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/ai/mock"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/storage"
	badgerstore "github.com/RaymonMudrig/ManualBook/storage/badger"
)

const ingestionTestDoc = `<!-- METADATA
id: widgets
intent: learn
category: application
-->
# Widgets

Widgets are the building blocks of the workspace.

Each widget occupies one panel and can be moved freely.

<!-- METADATA
id: widget_add
intent: do
category: application
-->
## Adding a Widget

Click the plus button on the toolbar.
`

func buildTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	b := catalog.NewBuilder()
	b.AddMarkdown("guide.md", []byte(ingestionTestDoc))
	cat := b.Build()
	require.Equal(t, 2, cat.Len())
	return cat
}

func setupPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.ChunkRepository, storage.CatalogRepository) {
	t.Helper()
	chunkRepo, articleRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	pipeline, err := NewPipeline(chunkRepo, articleRepo, mock.NewMockProvider(), opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, chunkRepo, articleRepo
}

func TestNewPipeline(t *testing.T) {
	chunkRepo, articleRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewPipeline(nil, articleRepo, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(chunkRepo, nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrCatalogRepositoryRequired)

	_, err = NewPipeline(chunkRepo, articleRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestIngestCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("stores articles and chunks", func(t *testing.T) {
		pipeline, chunkRepo, articleRepo := setupPipeline(t)

		stats, err := pipeline.IngestCatalog(ctx, buildTestCatalog(t))
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Articles)
		assert.Zero(t, stats.FailedArticles)
		assert.GreaterOrEqual(t, stats.Chunks, 2)

		count, err := chunkRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, stats.Chunks, count)

		stored, err := articleRepo.ListArticles(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("chunks carry article metadata", func(t *testing.T) {
		pipeline, chunkRepo, _ := setupPipeline(t)

		_, err := pipeline.IngestCatalog(ctx, buildTestCatalog(t))
		require.NoError(t, err)

		matches, err := chunkRepo.Query(ctx, make([]float32, 384), storage.Filter{}, -1, 100)
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		for _, match := range matches {
			assert.NotEmpty(t, match.Chunk.ArticleID)
			assert.NotEmpty(t, match.Chunk.Intent)
			assert.NotEmpty(t, match.Chunk.Vector)
		}
	})

	t.Run("reingest replaces previous state", func(t *testing.T) {
		pipeline, chunkRepo, _ := setupPipeline(t)

		first, err := pipeline.IngestCatalog(ctx, buildTestCatalog(t))
		require.NoError(t, err)
		second, err := pipeline.IngestCatalog(ctx, buildTestCatalog(t))
		require.NoError(t, err)
		assert.Equal(t, first.Chunks, second.Chunks)

		count, err := chunkRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.Chunks, count)
	})

	t.Run("embedding failure skips article", func(t *testing.T) {
		chunkRepo, articleRepo, backend, err := badgerstore.NewMemoryRepositories()
		require.NoError(t, err)
		defer backend.Close()

		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			// Content begins with the article heading, so this fails both
			// attempts for the level-two article and succeeds for the rest.
			if strings.HasPrefix(texts[0], "## ") {
				return nil, errors.New("embedding service down")
			}
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 0, 0}
			}
			return vectors, nil
		}

		pipeline, err := NewPipeline(chunkRepo, articleRepo, provider, WithPoolSize(1))
		require.NoError(t, err)
		defer pipeline.Release()

		stats, err := pipeline.IngestCatalog(ctx, buildTestCatalog(t))
		require.NoError(t, err)
		assert.Equal(t, 1, stats.FailedArticles)
		assert.Equal(t, 1, stats.Articles)
	})
}
