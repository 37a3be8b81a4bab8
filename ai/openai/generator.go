package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/RaymonMudrig/ManualBook/ai"
)

// AnswerGenerator implements ai.AnswerGenerator using OpenAI-compatible
// chat APIs.
type AnswerGenerator struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newAnswerGenerator wraps an existing chat client. Used by Provider so the
// classifier and generator share one connection.
func newAnswerGenerator(client llms.Model, timeout time.Duration) *AnswerGenerator {
	return &AnswerGenerator{
		client:  client,
		timeout: timeout,
		logger:  slog.Default().With("component", "openai-generator"),
	}
}

// NewAnswerGenerator creates a new answer generator using the provided
// configuration.
//
// Returns ai.AnswerGenerator interface to enforce abstraction.
func NewAnswerGenerator(config *ai.Config) (ai.AnswerGenerator, error) {
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

	return newAnswerGenerator(client, config.Timeout), nil
}

// GenerateAnswer answers the query grounded on the supplied context.
func (g *AnswerGenerator) GenerateAnswer(ctx context.Context, query, contextText string, sources []ai.Source) (string, error) {
	g.logger.Debug("generating answer",
		"query_length", len(query),
		"context_length", len(contextText),
		"sources", len(sources))

	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(answerSystemPrompt),
			},
		},
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildAnswerPrompt(query, contextText, sources)),
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
