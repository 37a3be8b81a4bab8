package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/core"
)

// QueryClassifier implements ai.QueryClassifier using OpenAI-compatible
// chat APIs.
type QueryClassifier struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// classification mirrors the JSON structure the model is asked to produce.
type classification struct {
	Intent     string   `json:"intent"`
	Category   string   `json:"category"`
	Topics     []string `json:"topics"`
	Confidence float64  `json:"confidence"`
}

// newQueryClassifier is an internal constructor that returns the concrete
// type. Used by Provider to manage the instance.
func newQueryClassifier(config *ai.Config) (*QueryClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryClassifier{
		client:  client,
		timeout: config.Timeout,
		logger:  slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewQueryClassifier creates a new query classifier using the provided
// configuration.
//
// Returns ai.QueryClassifier interface to enforce abstraction.
func NewQueryClassifier(config *ai.Config) (ai.QueryClassifier, error) {
	return newQueryClassifier(config)
}

// ClassifyQuery classifies one query with the chat model.
// Malformed JSON responses are retried up to 3 times before failing.
func (c *QueryClassifier) ClassifyQuery(ctx context.Context, query string) (core.Classification, error) {
	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildClassificationPrompt(query)),
			},
		},
	}

	var raw classification
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		// Each attempt gets its own deadline.
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		response, err := c.client.GenerateContent(attemptCtx, content,
			llms.WithTemperature(0.1),
			llms.WithJSONMode())
		cancel()
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return core.Classification{}, err
		}

		if len(response.Choices) < 1 {
			c.logger.Debug("no choices returned from model")
			return core.Classification{}, ErrEmptyResponse
		}

		text := extractJSONObject(response.Choices[0].Content)
		text = repairJSON(text)

		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", text,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
		return core.Classification{}, lastErr
	}

	return sanitizeClassification(raw), nil
}

// sanitizeClassification coerces a raw model classification into a valid
// core.Classification: unrecognized fields fall back to the defaults
// (learn, unknown, confidence 0.5), topics are capped at 5, and confidence
// is clamped to [0, 1].
func sanitizeClassification(raw classification) core.Classification {
	out := core.Classification{
		Intent:     core.IntentLearn,
		Category:   core.CategoryUnknown,
		Confidence: 0.5,
	}

	if intent, ok := core.ParseIntent(raw.Intent); ok {
		out.Intent = intent
	}
	if category, ok := core.ParseCategory(raw.Category); ok {
		out.Category = category
	}

	for _, topic := range raw.Topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		out.Topics = append(out.Topics, topic)
		if len(out.Topics) == 5 {
			break
		}
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	out.Confidence = float32(confidence)

	return out
}

// extractJSONObject strips markdown code fences and surrounding prose,
// returning the substring from the first '{' to the last '}'.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
