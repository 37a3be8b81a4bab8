package manualbook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/ai/mock"
	"github.com/RaymonMudrig/ManualBook/catalog"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithAIProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.CatalogRepository())
		assert.NotNil(t, db.Provider())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("engine without ingested catalog has no generation", func(t *testing.T) {
		engine, err := db.NewEngine()
		require.NoError(t, err)
		assert.Nil(t, engine.CurrentGeneration())
	})
}

func TestDatabase_EngineRestoresCatalog(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	builder := catalog.NewBuilder()
	builder.AddMarkdown("manual.md", []byte(engineTestDoc))
	cat := builder.Build()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	stats, err := pipeline.IngestCatalog(context.Background(), cat)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Articles)

	engine, err := db.NewEngine()
	require.NoError(t, err)

	gen := engine.CurrentGeneration()
	require.NotNil(t, gen)
	assert.Equal(t, 4, gen.Catalog().Len())

	article, err := gen.Catalog().Article("widget_list")
	require.NoError(t, err)
	assert.Equal(t, "Widget List", article.Title)
	assert.Equal(t, []string{"component list", "control list"}, article.Synonyms)
}
