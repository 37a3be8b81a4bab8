package manualbook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/ai/mock"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
	badgerstore "github.com/RaymonMudrig/ManualBook/storage/badger"
	"github.com/RaymonMudrig/ManualBook/websearch"
)

const engineTestDoc = `<!-- METADATA
id: widget_list
intent: learn
category: application
synonyms: component list, control list
codes: wl
-->
# Widget List

The widget list shows every widget in the current workspace.

<!-- METADATA
id: widget_add
intent: do
category: application
-->
# Adding a Widget

Click the plus button on the toolbar to add a widget.

<!-- METADATA
id: installation
intent: do
category: application
-->
# Installing the Application

Run the installer and follow the prompts.

<!-- METADATA
id: data_export
intent: learn
category: data
-->
# Data Export Formats

Exports use comma separated values with a header row.
`

const engineVectorDim = 8

// Each article gets one axis; chunk vectors are scaled so the dot product
// against a unit query vector yields the intended similarity.
var engineChunkAxes = map[string]struct {
	axis  int
	scale float32
}{
	"widget_list":  {0, 0.6},
	"widget_add":   {1, 0.6},
	"installation": {2, 0.6},
	"data_export":  {3, 0.9},
}

func engineQueryVector(query string) []float32 {
	vector := make([]float32, engineVectorDim)
	lower := strings.ToLower(query)
	hasWord := func(w string) bool {
		for _, f := range strings.Fields(lower) {
			if f == w {
				return true
			}
		}
		return false
	}
	switch {
	case hasWord("widget") && hasWord("list"):
		vector[0] = 1
	case hasWord("widget"):
		vector[1] = 1
	case hasWord("install"):
		vector[2] = 1
	case hasWord("export"):
		vector[3] = 1
	}
	return vector
}

func setupEngine(t *testing.T, webHandler http.HandlerFunc) (*Engine, storage.ChunkRepository) {
	t.Helper()

	chunkRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	builder := catalog.NewBuilder()
	builder.AddMarkdown("manual.md", []byte(engineTestDoc))
	cat := builder.Build()
	require.Equal(t, 4, cat.Len())

	ctx := context.Background()
	for _, article := range cat.Articles() {
		placement := engineChunkAxes[article.ID]
		vector := make([]float32, engineVectorDim)
		vector[placement.axis] = placement.scale
		err := chunkRepo.AddChunks(ctx, &core.Chunk{
			ID:        core.IDFromContent(article.ID),
			ArticleID: article.ID,
			Seq:       0,
			Text:      article.Content,
			Intent:    article.Intent,
			Category:  article.Category,
			Vector:    vector,
		})
		require.NoError(t, err)
	}

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return engineQueryVector(text), nil
	}

	opts := []EngineOption{}
	if webHandler != nil {
		server := httptest.NewServer(webHandler)
		t.Cleanup(server.Close)
		searcher := websearch.NewSearcher(
			websearch.WithBaseURLs(server.URL, server.URL),
			websearch.WithHTTPClient(server.Client()),
		)
		opts = append(opts, WithSearcher(searcher))
	}

	engine, err := NewEngine(chunkRepo, provider, opts...)
	require.NoError(t, err)
	require.NoError(t, engine.InstallCatalog(ctx, cat))
	return engine, chunkRepo
}

func webResultsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"RelatedTopics": [
		{"FirstURL": "https://docs.docker.com/engine/install/",
		 "Text": "Install Docker Engine - Docker Documentation"}
	]}`))
}

func webEmptyHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"RelatedTopics": []}`))
}

func traceStages(trace []core.TraceRecord) []string {
	stages := make([]string, 0, len(trace))
	for _, r := range trace {
		stages = append(stages, r.Stage)
	}
	return stages
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	chunkRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewEngine(chunkRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	engine, err := NewEngine(chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)
	assert.Nil(t, engine.CurrentGeneration())
}

func TestHandleQueryRejectsInvalidQueries(t *testing.T) {
	engine, _ := setupEngine(t, nil)
	ctx := context.Background()

	_, err := engine.HandleQuery(ctx, "", QueryOptions{})
	assert.ErrorIs(t, err, core.ErrEmptyQuery)

	_, err = engine.HandleQuery(ctx, "   \t  ", QueryOptions{})
	assert.ErrorIs(t, err, core.ErrEmptyQuery)

	_, err = engine.HandleQuery(ctx, strings.Repeat("x", core.MaxQueryLength+1), QueryOptions{})
	assert.ErrorIs(t, err, core.ErrQueryTooLong)
}

func TestHandleQueryCatalogMode(t *testing.T) {
	engine, _ := setupEngine(t, nil)

	resp, err := engine.HandleQuery(context.Background(), "widget list", QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.ModeCatalogRAG, resp.Mode)
	assert.Equal(t, core.IntentLearn, resp.Classification.Intent)
	assert.Equal(t, core.CategoryApplication, resp.Classification.Category)
	assert.NotEmpty(t, resp.Answer)

	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "widget_list", resp.Sources[0].ArticleID)
	assert.Equal(t, "Widget List", resp.Sources[0].Title)
	assert.NotEmpty(t, resp.Sources[0].Content)

	stages := traceStages(resp.Trace)
	assert.Equal(t, []string{"classify", "catalog_retrieval", "relevance_filter", "rag_generation"}, stages)
	for _, r := range resp.Trace {
		assert.Equal(t, core.TraceSuccess, r.Status)
	}
}

func TestHandleQuerySurvivesStoreRebuild(t *testing.T) {
	engine, chunkRepo := setupEngine(t, nil)
	ctx := context.Background()

	resp, err := engine.HandleQuery(ctx, "widget list", QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, core.ModeCatalogRAG, resp.Mode)

	// Reingestion clears the persisted chunks before rewriting them. The
	// installed generation holds its own index snapshot, so queries keep
	// answering from the old catalog until the new one is swapped in.
	require.NoError(t, chunkRepo.DeleteAll(ctx))

	resp, err = engine.HandleQuery(ctx, "widget list", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, core.ModeCatalogRAG, resp.Mode)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "widget_list", resp.Sources[0].ArticleID)
}

func TestHandleQueryChunkMode(t *testing.T) {
	engine, _ := setupEngine(t, nil)

	// The export article scores high semantically but the query's specific
	// term "docker" never appears in its content, so the catalog tier
	// rejects it and the raw chunk tier answers instead.
	resp, err := engine.HandleQuery(context.Background(), "export data to docker", QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.ModeRAG, resp.Mode)
	assert.NotEmpty(t, resp.Answer)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "data_export", resp.Sources[0].ArticleID)
	assert.Equal(t, "Data Export Formats", resp.Sources[0].Title)
	assert.NotEmpty(t, resp.Sources[0].Snippet)
}

func TestHandleQueryWebMode(t *testing.T) {
	engine, _ := setupEngine(t, webResultsHandler)

	resp, err := engine.HandleQuery(context.Background(), "how to install docker", QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.ModeWeb, resp.Mode)
	assert.NotEmpty(t, resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "https://docs.docker.com/engine/install/", resp.Sources[0].URL)

	stages := traceStages(resp.Trace)
	assert.Contains(t, stages, "chunk_search")
	assert.Contains(t, stages, "web_search")
}

func TestHandleQueryNoneMode(t *testing.T) {
	engine, _ := setupEngine(t, webEmptyHandler)

	resp, err := engine.HandleQuery(context.Background(), "how to install docker", QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.ModeNone, resp.Mode)
	assert.Equal(t, noAnswerMessage, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Contains(t, traceStages(resp.Trace), "no_answer")
}

func TestHandleQueryWithoutWebSearcher(t *testing.T) {
	engine, _ := setupEngine(t, nil)

	resp, err := engine.HandleQuery(context.Background(), "how to install docker", QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.ModeNone, resp.Mode)

	var webRecord *core.TraceRecord
	for i := range resp.Trace {
		if resp.Trace[i].Stage == "web_search" {
			webRecord = &resp.Trace[i]
		}
	}
	require.NotNil(t, webRecord)
	assert.Equal(t, core.TraceFailed, webRecord.Status)
}

func TestHandleQueryTerminatesInExactlyOneMode(t *testing.T) {
	engine, _ := setupEngine(t, webResultsHandler)
	modes := map[core.Mode]bool{
		core.ModeCatalogRAG: true,
		core.ModeRAG:        true,
		core.ModeWeb:        true,
		core.ModeNone:       true,
	}

	queries := []string{
		"widget list",
		"how to add a widget",
		"export data to docker",
		"how to install docker",
		"completely unrelated nonsense",
	}
	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			resp, err := engine.HandleQuery(context.Background(), query, QueryOptions{})
			require.NoError(t, err)
			assert.True(t, modes[resp.Mode], "unexpected mode %q", resp.Mode)
			assert.NotEmpty(t, resp.Answer)
		})
	}
}

func TestHandleQueryDegradesWhenCatalogMissing(t *testing.T) {
	chunkRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	engine, err := NewEngine(chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	resp, err := engine.HandleQuery(context.Background(), "widget list", QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, core.ModeNone, resp.Mode)
	require.NotEmpty(t, resp.Trace)
	assert.Equal(t, "catalog_retrieval", resp.Trace[1].Stage)
	assert.Equal(t, core.TraceFailed, resp.Trace[1].Status)
}

func TestClassifyQuery(t *testing.T) {
	engine, _ := setupEngine(t, nil)
	ctx := context.Background()

	classification, err := engine.ClassifyQuery(ctx, "what is the widget list")
	require.NoError(t, err)
	assert.Equal(t, core.IntentLearn, classification.Intent)
	assert.Equal(t, core.CategoryApplication, classification.Category)

	_, err = engine.ClassifyQuery(ctx, "")
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestBuildArticleContextTruncatesOnRuneBoundary(t *testing.T) {
	article := &core.Article{
		ID:           "glossar",
		Title:        "Glossar",
		Intent:       core.IntentLearn,
		Category:     core.CategoryApplication,
		Content:      strings.Repeat("語", maxArticleContextChars),
		HeadingLevel: 1,
	}
	cat := catalog.FromArticles([]*core.Article{article})

	contextBlock, sources, _ := buildArticleContext(cat, []*core.RetrievalResult{
		{Article: article, BoostedScore: 0.9, Relevant: true},
	})

	// Three-byte runes guarantee the byte limit lands inside one.
	assert.True(t, utf8.ValidString(contextBlock))
	assert.Contains(t, contextBlock, "...")

	require.Len(t, sources, 1)
	assert.Equal(t, article.Content, sources[0].Content)
}

func TestBoostBySynonymsAndCodes(t *testing.T) {
	builder := catalog.NewBuilder()
	builder.AddMarkdown("manual.md", []byte(engineTestDoc))
	cat := builder.Build()

	matches := []*core.ChunkMatch{
		{Chunk: &core.Chunk{ArticleID: "installation"}, Score: 0.60},
		{Chunk: &core.Chunk{ArticleID: "widget_list"}, Score: 0.55},
	}

	boostBySynonymsAndCodes("show the component list", matches, cat)

	// The synonym match overtakes the higher raw score.
	assert.Equal(t, "widget_list", matches[0].Chunk.ArticleID)
	assert.InDelta(t, 0.70, matches[0].Score, 1e-6)
	assert.InDelta(t, 0.60, matches[1].Score, 1e-6)
}
