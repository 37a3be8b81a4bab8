package manualbook

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/retrieval"
	"github.com/RaymonMudrig/ManualBook/storage"
	"github.com/RaymonMudrig/ManualBook/storage/memory"
	"github.com/RaymonMudrig/ManualBook/websearch"
)

const (
	defaultTopK          = 5
	defaultMinSimilarity = 0.7

	// Chunk matches whose article synonyms or codes appear in the query
	// get this added to their similarity score.
	synonymCodeBoost = 0.15

	// Per-article cap on content handed to the answer model. Sources
	// returned to the caller always carry the full content.
	maxArticleContextChars = 1000

	noAnswerMessage = "The system could not retrieve sufficient information from the " +
		"knowledge base or the web. Please try a different query."
)

// Engine runs the escalation pipeline for one query: classify, catalog
// retrieval, relevance filter, then raw chunk search, then web search.
// Exactly one terminal mode is reached. Collaborator failures are recorded
// in the trace and drive escalation to the next tier, never an abort.
type Engine struct {
	generation atomic.Pointer[Generation]

	chunks     storage.ChunkRepository
	classifier *retrieval.Classifier
	embedder   ai.Embedder
	generator  ai.AnswerGenerator
	searcher   *websearch.Searcher

	ranking       retrieval.RankingConfig
	topK          int
	minSimilarity float32
	logger        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithSearcher sets the web search collaborator for the last escalation
// tier. Without one, the web tier is skipped.
func WithSearcher(searcher *websearch.Searcher) EngineOption {
	return func(e *Engine) error {
		e.searcher = searcher
		return nil
	}
}

// WithTopK sets the default number of results per tier.
func WithTopK(topK int) EngineOption {
	return func(e *Engine) error {
		if topK > 0 {
			e.topK = topK
		}
		return nil
	}
}

// WithMinSimilarity sets the default chunk-search similarity threshold.
func WithMinSimilarity(threshold float32) EngineOption {
	return func(e *Engine) error {
		if threshold > 0 {
			e.minSimilarity = threshold
		}
		return nil
	}
}

// WithRankingConfig sets the ranking configuration used by retrievers of
// generations installed through InstallCatalog.
func WithRankingConfig(config retrieval.RankingConfig) EngineOption {
	return func(e *Engine) error {
		e.ranking = config
		return nil
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a query engine over the given chunk store and AI
// provider. Install a catalog generation before serving queries; until
// then the catalog tier reports failure and queries escalate directly to
// chunk search.
func NewEngine(chunks storage.ChunkRepository, provider ai.Provider, opts ...EngineOption) (*Engine, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	classifier, err := retrieval.NewClassifier(provider.QueryClassifier())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		chunks:        chunks,
		classifier:    classifier,
		embedder:      provider.Embedder(),
		generator:     provider.AnswerGenerator(),
		ranking:       retrieval.DefaultRankingConfig(),
		topK:          defaultTopK,
		minSimilarity: defaultMinSimilarity,
		logger:        slog.Default().With("component", "engine"),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			return nil, optErr
		}
	}

	return e, nil
}

// InstallCatalog builds a new generation over the catalog and atomically
// swaps it in. The persisted chunks are snapshotted into an in-memory
// index first, so in-flight and later queries on the old generation keep
// working while the store is rebuilt. In-flight queries keep the
// generation they started with.
func (e *Engine) InstallCatalog(ctx context.Context, cat *catalog.Catalog) error {
	all, err := e.chunks.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("snapshotting chunks: %w", err)
	}

	gen, err := NewGeneration(cat, memory.NewChunkIndex(all), e.embedder, retrieval.WithRankingConfig(e.ranking))
	if err != nil {
		return err
	}
	e.generation.Store(gen)
	e.logger.Info("catalog generation installed", "articles", cat.Len(), "chunks", len(all))
	return nil
}

// CurrentGeneration returns the installed generation, or nil if none.
func (e *Engine) CurrentGeneration() *Generation {
	return e.generation.Load()
}

// QueryOptions are per-request overrides. Zero values fall back to the
// engine defaults.
type QueryOptions struct {
	TopK          int
	MinSimilarity float32
}

// ArticleRef identifies a related article in a source record.
type ArticleRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Source describes one piece of evidence behind an answer. Catalog
// sources carry full article content and relationships; chunk sources a
// snippet; web sources a URL and snippet.
type Source struct {
	ArticleID string        `json:"article_id,omitempty"`
	Title     string        `json:"title"`
	Score     float32       `json:"score,omitempty"`
	Intent    core.Intent   `json:"intent,omitempty"`
	Category  core.Category `json:"category,omitempty"`
	Content   string        `json:"content,omitempty"`
	Snippet   string        `json:"snippet,omitempty"`
	URL       string        `json:"url,omitempty"`
	Images    []string      `json:"images,omitempty"`
	Parent    *ArticleRef   `json:"parent,omitempty"`
	Children  []ArticleRef  `json:"children,omitempty"`
	SeeAlso   []ArticleRef  `json:"see_also,omitempty"`
}

// Response is the full result of one query.
type Response struct {
	Query          string              `json:"query"`
	Answer         string              `json:"answer"`
	Mode           core.Mode           `json:"mode"`
	Sources        []Source            `json:"sources"`
	Classification core.Classification `json:"classification"`
	Trace          []core.TraceRecord  `json:"trace"`
}

type traceList struct {
	records []core.TraceRecord
}

func (t *traceList) add(stage, status, detail string, metrics map[string]any) {
	t.records = append(t.records, core.TraceRecord{
		Stage:   stage,
		Status:  status,
		Detail:  detail,
		Metrics: metrics,
	})
}

// ClassifyQuery is the debug entry point: it validates and classifies the
// query without running retrieval.
func (e *Engine) ClassifyQuery(ctx context.Context, query string) (core.Classification, error) {
	cleaned, err := core.CleanQuery(query)
	if err != nil {
		return core.Classification{}, err
	}
	return e.classifier.Classify(ctx, cleaned), nil
}

// HandleQuery runs the full escalation pipeline. It returns an error only
// for invalid queries rejected before pipeline entry; every failure past
// that point degrades to the next tier and shows up in the response trace.
func (e *Engine) HandleQuery(ctx context.Context, query string, opts QueryOptions) (*Response, error) {
	cleaned, err := core.CleanQuery(query)
	if err != nil {
		return nil, err
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = e.topK
	}
	minSimilarity := opts.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = e.minSimilarity
	}

	e.logger.Info("handling query", "query", cleaned, "top_k", topK)

	trace := &traceList{}
	classification := e.classifier.Classify(ctx, cleaned)
	trace.add("classify", core.TraceSuccess,
		fmt.Sprintf("classified as %s/%s", classification.Intent, classification.Category),
		map[string]any{"confidence": classification.Confidence})

	resp := &Response{
		Query:          cleaned,
		Mode:           core.ModeNone,
		Classification: classification,
	}

	gen := e.generation.Load()
	relevant := e.retrieveRelevant(ctx, cleaned, classification, gen, topK, trace)

	if len(relevant) > 0 {
		contextBlock, sources, aiSources := buildArticleContext(gen.Catalog(), relevant)
		answer, genErr := e.generator.GenerateAnswer(ctx, cleaned, contextBlock, aiSources)
		if genErr != nil {
			trace.add("rag_generation", core.TraceFailed, genErr.Error(), nil)
		} else {
			trace.add("rag_generation", core.TraceSuccess, "generated answer from catalog articles", nil)
			resp.Answer = answer
			resp.Mode = core.ModeCatalogRAG
			resp.Sources = sources
			resp.Trace = trace.records
			return resp, nil
		}
	}

	matches := e.searchChunks(ctx, cleaned, gen, topK, minSimilarity, trace)
	if len(matches) > 0 {
		contextBlock, sources, aiSources := buildChunkContext(gen, matches)
		answer, genErr := e.generator.GenerateAnswer(ctx, cleaned, contextBlock, aiSources)
		if genErr != nil {
			trace.add("rag_generation", core.TraceFailed, genErr.Error(), nil)
		} else {
			trace.add("rag_generation", core.TraceSuccess, "generated answer from retrieved chunks", nil)
			resp.Answer = answer
			resp.Mode = core.ModeRAG
			resp.Sources = sources
			resp.Trace = trace.records
			return resp, nil
		}
	}

	if webResp := e.searchWeb(ctx, cleaned, trace); webResp != nil {
		resp.Answer = webResp.answer
		resp.Mode = core.ModeWeb
		resp.Sources = webResp.sources
		resp.Trace = trace.records
		return resp, nil
	}

	trace.add("no_answer", core.TraceSuccess, "all retrieval tiers exhausted", nil)
	resp.Answer = noAnswerMessage
	resp.Trace = trace.records
	return resp, nil
}

// retrieveRelevant runs the catalog tier: retrieval plus the relevance
// filter. Returns only candidates that passed verification.
func (e *Engine) retrieveRelevant(ctx context.Context, query string, classification core.Classification, gen *Generation, topK int, trace *traceList) []*core.RetrievalResult {
	if gen == nil {
		trace.add("catalog_retrieval", core.TraceFailed, "no catalog generation installed", nil)
		return nil
	}

	results := gen.Retriever().Retrieve(ctx, query, classification, topK)
	trace.add("catalog_retrieval", core.TraceSuccess,
		fmt.Sprintf("retrieved %d candidate articles", len(results)),
		map[string]any{"count": len(results)})

	var relevant []*core.RetrievalResult
	for _, r := range results {
		if r.Relevant {
			relevant = append(relevant, r)
		}
	}
	trace.add("relevance_filter", core.TraceSuccess,
		fmt.Sprintf("%d of %d candidates relevant", len(relevant), len(results)),
		map[string]any{"kept": len(relevant)})
	return relevant
}

// searchChunks runs the raw chunk tier: an unfiltered vector search with a
// synonym/code boost, keeping only matches above the similarity threshold.
func (e *Engine) searchChunks(ctx context.Context, query string, gen *Generation, topK int, minSimilarity float32, trace *traceList) []*core.ChunkMatch {
	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		trace.add("chunk_search", core.TraceFailed, fmt.Sprintf("embedding query: %v", err), nil)
		return nil
	}

	var index storage.ChunkSearcher = e.chunks
	if gen != nil {
		index = gen.Chunks()
	}
	matches, err := index.Query(ctx, vector, storage.Filter{}, 0, topK)
	if err != nil {
		trace.add("chunk_search", core.TraceFailed, fmt.Sprintf("querying chunks: %v", err), nil)
		return nil
	}

	if gen != nil {
		boostBySynonymsAndCodes(query, matches, gen.Catalog())
	}

	var best float32
	kept := matches[:0]
	for _, m := range matches {
		if m.Score > best {
			best = m.Score
		}
		if m.Score >= minSimilarity {
			kept = append(kept, m)
		}
	}

	trace.add("chunk_search", core.TraceSuccess,
		fmt.Sprintf("%d chunks above threshold", len(kept)),
		map[string]any{"top_score": best, "kept": len(kept), "threshold": minSimilarity})
	return kept
}

// boostBySynonymsAndCodes raises the score of chunks whose source article
// declares a synonym or code that appears in the query, then re-sorts.
func boostBySynonymsAndCodes(query string, matches []*core.ChunkMatch, cat *catalog.Catalog) {
	queryLower := strings.ToLower(query)
	queryUpper := strings.ToUpper(query)

	for _, m := range matches {
		article, err := cat.Article(m.Chunk.ArticleID)
		if err != nil {
			continue
		}

		boosted := false
		for _, syn := range article.Synonyms {
			if strings.Contains(queryLower, strings.ToLower(syn)) {
				boosted = true
				break
			}
		}
		if !boosted {
			for _, code := range article.Codes {
				if strings.Contains(queryUpper, strings.ToUpper(code)) {
					boosted = true
					break
				}
			}
		}
		if boosted {
			m.Score = min(m.Score+synonymCodeBoost, 1.0)
		}
	}

	slices.SortFunc(matches, func(a, b *core.ChunkMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
}

type webOutcome struct {
	answer  string
	sources []Source
}

// searchWeb runs the last tier. A nil return means the tier produced
// nothing and the pipeline terminates with no answer.
func (e *Engine) searchWeb(ctx context.Context, query string, trace *traceList) *webOutcome {
	if e.searcher == nil {
		trace.add("web_search", core.TraceFailed, "no web search configured", nil)
		return nil
	}

	results, err := e.searcher.Search(ctx, query)
	if err != nil {
		trace.add("web_search", core.TraceFailed, err.Error(), nil)
		return nil
	}
	if len(results) == 0 {
		trace.add("web_search", core.TraceSuccess, "no web results", map[string]any{"count": 0})
		return nil
	}
	trace.add("web_search", core.TraceSuccess,
		fmt.Sprintf("retrieved %d web results", len(results)),
		map[string]any{"count": len(results)})

	var contextLines []string
	sources := make([]Source, 0, len(results))
	aiSources := make([]ai.Source, 0, len(results))
	for _, r := range results {
		contextLines = append(contextLines, fmt.Sprintf("%s\nURL: %s\nSnippet: %s", r.Title, r.URL, r.Snippet))
		sources = append(sources, Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
		aiSources = append(aiSources, ai.Source{Title: r.Title, Origin: r.URL})
	}
	contextBlock := strings.Join(contextLines, "\n\n")

	answer, err := e.generator.GenerateAnswer(ctx, query, contextBlock, aiSources)
	if err != nil {
		// The tier already succeeded; degrade to the raw results.
		trace.add("web_generation", core.TraceFailed, err.Error(), nil)
		answer = "A web search returned the following results:\n\n" + contextBlock
	} else {
		trace.add("web_generation", core.TraceSuccess, "generated answer from web results", nil)
	}

	return &webOutcome{answer: answer, sources: sources}
}

// buildArticleContext assembles the answer-model context and the response
// sources for relevant catalog articles. Context content is truncated per
// article; sources carry the full content plus graph relationships.
func buildArticleContext(cat *catalog.Catalog, results []*core.RetrievalResult) (string, []Source, []ai.Source) {
	var contextLines []string
	sources := make([]Source, 0, len(results))
	aiSources := make([]ai.Source, 0, len(results))

	for _, r := range results {
		article := r.Article

		content := article.Content
		if len(content) > maxArticleContextChars {
			content = core.Truncate(content, maxArticleContextChars) + "..."
		}
		contextLines = append(contextLines, fmt.Sprintf("## %s\n%s", article.Title, content))

		source := Source{
			ArticleID: article.ID,
			Title:     article.Title,
			Score:     r.BoostedScore,
			Intent:    article.Intent,
			Category:  article.Category,
			Content:   article.Content,
			Images:    article.Images,
		}
		if related, err := cat.Related(article.ID); err == nil {
			if related.Parent != nil {
				source.Parent = &ArticleRef{ID: related.Parent.ID, Title: related.Parent.Title}
			}
			for _, c := range related.Children {
				source.Children = append(source.Children, ArticleRef{ID: c.ID, Title: c.Title})
			}
			for _, s := range related.SeeAlso {
				source.SeeAlso = append(source.SeeAlso, ArticleRef{ID: s.ID, Title: s.Title})
			}
		}
		sources = append(sources, source)
		aiSources = append(aiSources, ai.Source{Title: article.Title, Origin: article.ID})
	}

	return strings.Join(contextLines, "\n\n"), sources, aiSources
}

// buildChunkContext assembles context and sources for raw chunk matches.
// Titles come from the catalog when a generation is installed.
func buildChunkContext(gen *Generation, matches []*core.ChunkMatch) (string, []Source, []ai.Source) {
	var contextLines []string
	sources := make([]Source, 0, len(matches))
	aiSources := make([]ai.Source, 0, len(matches))

	for _, m := range matches {
		title := m.Chunk.ArticleID
		if gen != nil {
			if article, err := gen.Catalog().Article(m.Chunk.ArticleID); err == nil {
				title = article.Title
			}
		}

		contextLines = append(contextLines, fmt.Sprintf("## %s\n%s", title, m.Chunk.Text))
		sources = append(sources, Source{
			ArticleID: m.Chunk.ArticleID,
			Title:     title,
			Score:     m.Score,
			Snippet:   m.Chunk.Text,
		})
		aiSources = append(aiSources, ai.Source{Title: title, Origin: m.Chunk.ArticleID})
	}

	return strings.Join(contextLines, "\n\n"), sources, aiSources
}
