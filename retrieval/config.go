package retrieval

// RankingConfig collects the tunable constants of the ranking pipeline.
// The defaults were arrived at empirically; tests verify relative ordering
// properties rather than exact score values, so the numbers can be tuned
// without rewriting the suite.
type RankingConfig struct {
	// TitleBoost is added to the raw score on an exact normalized title match.
	TitleBoost float32

	// IDBoost is added to the raw score on an exact normalized id match.
	IDBoost float32

	// PartialTitleBoost is added when all query words appear in the title.
	PartialTitleBoost float32

	// RelevanceThreshold is the minimum lexical relevance score for a
	// candidate to be marked relevant.
	RelevanceThreshold float32

	// HighScoreThreshold marks a candidate relevant on boosted score alone,
	// and gates the intent fallback pass.
	HighScoreThreshold float32

	// IDMatchThreshold marks a candidate relevant when its id contains a
	// query keyword and the boosted score clears this value.
	IDMatchThreshold float32

	// TitleWeight and ContentWeight combine the title and content keyword
	// overlap ratios into the lexical relevance score.
	TitleWeight   float32
	ContentWeight float32

	// ContentProbeLen is how many leading characters of article content
	// participate in the relevance overlap.
	ContentProbeLen int

	// FallbackWeight scales the boosted scores of results contributed by
	// the intent fallback pass when merging.
	FallbackWeight float32

	// MaxExpansionTerms caps how many synonyms/codes query expansion may
	// append to the query.
	MaxExpansionTerms int
}

// DefaultRankingConfig returns the production ranking defaults.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		TitleBoost:         0.25,
		IDBoost:            0.20,
		PartialTitleBoost:  0.15,
		RelevanceThreshold: 0.2,
		HighScoreThreshold: 0.70,
		IDMatchThreshold:   0.50,
		TitleWeight:        0.6,
		ContentWeight:      0.4,
		ContentProbeLen:    500,
		FallbackWeight:     0.8,
		MaxExpansionTerms:  3,
	}
}
