package retrieval

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
)

const defaultTopK = 5

// chunkOverfetch is how many chunk candidates are requested per article
// slot; chunk hits collapse onto their articles, shrinking the set.
const chunkOverfetch = 3

// Retriever ranks catalog articles against a classified query.
type Retriever struct {
	catalog  *catalog.Catalog
	chunks   storage.ChunkSearcher
	embedder ai.Embedder
	config   RankingConfig
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRankingConfig overrides the default ranking constants.
func WithRankingConfig(config RankingConfig) Option {
	return func(r *Retriever) error {
		r.config = config
		return nil
	}
}

// NewRetriever creates a retriever over the given catalog snapshot.
func NewRetriever(cat *catalog.Catalog, chunks storage.ChunkSearcher, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if cat == nil {
		return nil, ErrCatalogRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		catalog:  cat,
		chunks:   chunks,
		embedder: embedder,
		config:   DefaultRankingConfig(),
		logger:   slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve ranks catalog articles for the query, best first. It never
// fails: backing-service errors are logged and produce an empty list,
// which callers treat as the trigger for the next retrieval tier.
func (r *Retriever) Retrieve(ctx context.Context, query string, classification core.Classification, topK int) []*core.RetrievalResult {
	return r.RetrieveWithMonitor(ctx, query, classification, topK, nil)
}

// RetrieveWithMonitor is Retrieve with stage callbacks for observability.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, classification core.Classification, topK int, monitor Monitor) []*core.RetrievalResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	monitor.Start(query, classification)

	expanded := r.expandQuery(query)
	if expanded != query {
		r.logger.Debug("query expanded", "query", query, "expanded", expanded)
		monitor.QueryExpanded(query, expanded)
	}

	vector, err := r.embedder.EmbedText(ctx, expanded)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		monitor.Finish(nil)
		return nil
	}

	terms := extractSpecificTerms(query)
	monitor.SpecificTermsExtracted(terms)

	results := r.pass(ctx, query, vector, classification.Intent, classification.Category, topK, terms, monitor)

	if fallback, ok := complementIntent(classification.Intent); ok && r.needsFallback(results) {
		monitor.FallbackTriggered(fallback)
		secondary := r.pass(ctx, query, vector, fallback, classification.Category, topK, terms, monitor)
		results = r.mergeFallback(results, secondary)
	}

	slices.SortFunc(results, compareByBoostedScore)
	if len(results) > topK {
		results = results[:topK]
	}

	monitor.Finish(results)
	return results
}

// pass runs the filter/search/boost/verify stages once for one intent.
func (r *Retriever) pass(ctx context.Context, query string, vector []float32, intent core.Intent, category core.Category, topK int, terms []string, monitor Monitor) []*core.RetrievalResult {
	filter := storage.Filter{Intent: intent}
	if category == core.CategoryApplication || category == core.CategoryData {
		filter.Category = category
	}

	matches, err := r.chunks.Query(ctx, vector, filter, 0, topK*chunkOverfetch)
	if err != nil {
		r.logger.Error("error querying chunks", "err", err)
		return nil
	}
	monitor.AfterSemanticSearch(matches)

	results := r.collapseToArticles(matches)
	if len(results) > topK {
		results = results[:topK]
	}

	r.applyBoosts(query, results)
	monitor.AfterBoosting(results)

	r.verifyRelevance(query, results)
	r.enforceSpecificTerms(terms, results)
	monitor.AfterRelevanceCheck(results)

	return results
}

// expandQuery appends up to MaxExpansionTerms synonyms/codes of the first
// article whose identity fields exactly or near-exactly match the query.
// Partial keyword overlap never triggers expansion: loose expansion was
// found to inject unrelated terms and cause false positives.
func (r *Retriever) expandQuery(query string) string {
	nq := normalizeText(query)
	if nq == "" {
		return query
	}
	qWords := strings.Fields(nq)

	for _, article := range r.catalog.Articles() {
		if !matchesIdentity(nq, qWords, article) {
			continue
		}

		terms := make([]string, 0, r.config.MaxExpansionTerms)
		for _, t := range article.Synonyms {
			if len(terms) < r.config.MaxExpansionTerms {
				terms = append(terms, t)
			}
		}
		for _, t := range article.Codes {
			if len(terms) < r.config.MaxExpansionTerms {
				terms = append(terms, t)
			}
		}

		if len(terms) == 0 {
			return query
		}
		return query + " " + strings.Join(terms, " ")
	}

	return query
}

// matchesIdentity reports an exact or near-exact match between the
// normalized query and one article's identity fields: id equality, title
// word-subset containment with at most 3 extra title words, or code
// equality.
func matchesIdentity(nq string, qWords []string, article *core.Article) bool {
	if normalizeText(article.ID) == nq {
		return true
	}

	titleWords := strings.Fields(normalizeText(article.Title))
	if isSubset(qWords, wordSet(titleWords)) && len(titleWords)-len(qWords) <= 3 {
		return true
	}

	for _, code := range article.Codes {
		if normalizeText(code) == nq {
			return true
		}
	}
	return false
}

// collapseToArticles folds chunk matches onto their articles, keeping the
// best chunk score per article and preserving the score order. Chunks
// referencing articles missing from the catalog are skipped.
func (r *Retriever) collapseToArticles(matches []*core.ChunkMatch) []*core.RetrievalResult {
	var results []*core.RetrievalResult
	index := make(map[string]*core.RetrievalResult)

	for _, match := range matches {
		if existing, ok := index[match.Chunk.ArticleID]; ok {
			if match.Score > existing.RawScore {
				existing.RawScore = match.Score
				existing.BoostedScore = match.Score
			}
			continue
		}

		article, err := r.catalog.Article(match.Chunk.ArticleID)
		if err != nil {
			r.logger.Warn("chunk references unknown article", "article_id", match.Chunk.ArticleID)
			continue
		}

		result := &core.RetrievalResult{
			Article:      article,
			RawScore:     match.Score,
			BoostedScore: match.Score,
		}
		index[match.Chunk.ArticleID] = result
		results = append(results, result)
	}

	return results
}

// applyBoosts adds the first applicable exact-match boost against the
// original, unexpanded query, clamps to 1.0, and re-sorts. Boosts do not
// stack.
func (r *Retriever) applyBoosts(query string, results []*core.RetrievalResult) {
	nq := normalizeText(query)
	qWords := strings.Fields(nq)

	for _, result := range results {
		title := normalizeText(result.Article.Title)
		id := normalizeText(result.Article.ID)

		var boost float32
		switch {
		case nq != "" && nq == title:
			boost = r.config.TitleBoost
		case nq != "" && nq == id:
			boost = r.config.IDBoost
		case len(qWords) > 0 && isSubset(qWords, wordSet(strings.Fields(title))):
			boost = r.config.PartialTitleBoost
		}

		result.BoostedScore = result.RawScore + boost
		if result.BoostedScore > 1.0 {
			result.BoostedScore = 1.0
		}
	}

	slices.SortFunc(results, compareByBoostedScore)
}

// verifyRelevance computes the lexical relevance score for each candidate
// and marks the relevant ones. High boosted scores and id keyword hits can
// rescue a candidate with poor lexical overlap.
func (r *Retriever) verifyRelevance(query string, results []*core.RetrievalResult) {
	qk := keywords(query)

	for _, result := range results {
		titleSet := wordSet(keywords(result.Article.Title))

		probe := core.Truncate(result.Article.Content, r.config.ContentProbeLen)
		contentSet := wordSet(keywords(probe))

		result.Relevance = r.config.TitleWeight*overlapRatio(qk, titleSet) +
			r.config.ContentWeight*overlapRatio(qk, contentSet)

		id := normalizeText(result.Article.ID)
		idHit := false
		for _, kw := range qk {
			if strings.Contains(id, kw) {
				idHit = true
				break
			}
		}

		result.Relevant = result.Relevance >= r.config.RelevanceThreshold ||
			result.BoostedScore >= r.config.HighScoreThreshold ||
			(idHit && result.BoostedScore >= r.config.IDMatchThreshold)
	}
}

// enforceSpecificTerms demotes relevant candidates whose full content
// lacks every specific term of the query. Generic keyword overlap alone
// must not validate a candidate when the query names a concrete technology.
func (r *Retriever) enforceSpecificTerms(terms []string, results []*core.RetrievalResult) {
	if len(terms) == 0 {
		return
	}

	for _, result := range results {
		if !result.Relevant {
			continue
		}
		content := strings.ToLower(result.Article.Content)
		found := false
		for _, term := range terms {
			if strings.Contains(content, term) {
				found = true
				break
			}
		}
		if !found {
			result.Relevant = false
		}
	}
}

// needsFallback reports whether the primary pass warrants the one-shot
// intent fallback: no relevant result, or a weak best score.
func (r *Retriever) needsFallback(results []*core.RetrievalResult) bool {
	var best float32
	anyRelevant := false
	for _, result := range results {
		if result.Relevant {
			anyRelevant = true
		}
		if result.BoostedScore > best {
			best = result.BoostedScore
		}
	}
	return !anyRelevant || best < r.config.HighScoreThreshold
}

// complementIntent maps do<->learn. Trouble has no complement: widening a
// problem-solving query into how-to material was judged more misleading
// than escalating to the next tier.
func complementIntent(intent core.Intent) (core.Intent, bool) {
	switch intent {
	case core.IntentDo:
		return core.IntentLearn, true
	case core.IntentLearn:
		return core.IntentDo, true
	default:
		return "", false
	}
}

// mergeFallback keeps primary relevant results at full weight and adds
// fallback relevant results not already present at FallbackWeight times
// their boosted score. When neither pass produced a relevant result the
// primary candidates are returned unchanged so callers can inspect them.
func (r *Retriever) mergeFallback(primary, secondary []*core.RetrievalResult) []*core.RetrievalResult {
	present := make(map[string]bool, len(primary))
	for _, result := range primary {
		present[result.Article.ID] = true
	}

	var merged []*core.RetrievalResult
	for _, result := range primary {
		if result.Relevant {
			merged = append(merged, result)
		}
	}
	for _, result := range secondary {
		if !result.Relevant || present[result.Article.ID] {
			continue
		}
		result.BoostedScore *= r.config.FallbackWeight
		merged = append(merged, result)
	}

	if len(merged) == 0 {
		return primary
	}
	return merged
}

func compareByBoostedScore(a, b *core.RetrievalResult) int {
	if a.BoostedScore > b.BoostedScore {
		return -1
	}
	if a.BoostedScore < b.BoostedScore {
		return 1
	}
	return 0
}
