package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/core"
)

// Application-vocabulary tokens that resolve category=application
var applicationKeywords = []string{
	"widget", "interface", "workspace", "template", "settings",
	"menu", "window", "panel", "toolbar",
}

// Data-structure phrases that resolve category=data
var dataKeywords = []string{
	"data structure", "data format", "data content", "schema", "fields",
}

// Cue words that, combined with "list", signal an information request
var listCueWords = []string{"what", "show me", "display", "view", "see", "where is"}

// Classifier classifies user queries by intent and category. The model
// classification is advisory: deterministic pattern overrides and strict
// category keyword rules are applied on top, and a model failure degrades
// to pattern-only classification instead of erroring.
type Classifier struct {
	service ai.QueryClassifier
	logger  *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier) error

// WithClassifierLogger sets a custom logger.
// Default is slog.Default().
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClassifier creates a query classifier backed by the given service.
func NewClassifier(service ai.QueryClassifier, opts ...ClassifierOption) (*Classifier, error) {
	if service == nil {
		return nil, ErrClassifierRequired
	}

	c := &Classifier{
		service: service,
		logger:  slog.Default().With("component", "classifier"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Classify classifies one query. It never fails: if the model call errors,
// the result is the pattern-only classification with confidence 0.
func (c *Classifier) Classify(ctx context.Context, query string) core.Classification {
	classification, err := c.service.ClassifyQuery(ctx, query)
	if err != nil {
		c.logger.Warn("model classification failed, using pattern-only classification",
			"query", query, "err", err)
		classification = core.Classification{
			Intent:     core.IntentLearn,
			Category:   core.CategoryUnknown,
			Confidence: 0,
		}
	}

	classification = applyIntentPatterns(query, classification)
	classification = applyCategoryRules(query, classification)
	return classification
}

// applyIntentPatterns applies the deterministic intent overrides, in fixed
// order. Grammar patterns beat the model because short imperative queries
// are systematically misread by it.
func applyIntentPatterns(query string, classification core.Classification) core.Classification {
	lower := strings.ToLower(strings.TrimSpace(query))

	// "widget list" reads as "show me the list of widgets"
	if strings.HasSuffix(lower, " list") || lower == "list" {
		classification.Intent = core.IntentLearn
		classification.Confidence = min(1.0, classification.Confidence+0.1)
	} else if strings.HasPrefix(lower, "list ") {
		// "list widgets" is an imperative command
		classification.Intent = core.IntentDo
	}

	if strings.Contains(lower, "list") {
		for _, cue := range listCueWords {
			if strings.Contains(lower, cue) {
				classification.Intent = core.IntentLearn
				break
			}
		}
	}

	// A lone product-code shaped token ("Q100") is a reference lookup.
	if words := strings.Fields(lower); len(words) == 1 {
		if strings.ContainsFunc(query, unicode.IsDigit) && strings.ContainsFunc(query, unicode.IsUpper) {
			classification.Intent = core.IntentLearn
		}
	}

	if strings.HasPrefix(lower, "what are") || strings.HasPrefix(lower, "what is") || strings.HasPrefix(lower, "what's") {
		classification.Intent = core.IntentLearn
	}

	if strings.HasPrefix(lower, "how to") || strings.HasPrefix(lower, "how do i") || strings.HasPrefix(lower, "how can i") {
		classification.Intent = core.IntentDo
	}

	return classification
}

// applyCategoryRules forces the category to unknown unless the query
// literally contains a category keyword. The model tends to guess a
// category from polysemous domain nouns; an unknown category is omitted
// from the metadata filter downstream, which is safer than a wrong one.
func applyCategoryRules(query string, classification core.Classification) core.Classification {
	lower := strings.ToLower(query)

	hasApp := false
	for _, kw := range applicationKeywords {
		if strings.Contains(lower, kw) {
			hasApp = true
			break
		}
	}

	hasData := false
	for _, kw := range dataKeywords {
		if strings.Contains(lower, kw) {
			hasData = true
			break
		}
	}

	switch {
	case hasApp && !hasData:
		classification.Category = core.CategoryApplication
	case hasData && !hasApp:
		classification.Category = core.CategoryData
	default:
		classification.Category = core.CategoryUnknown
	}

	return classification
}
