package openai

import (
	"fmt"
	"strings"

	"github.com/RaymonMudrig/ManualBook/ai"
)

const classificationPromptTemplate = `You are a technical documentation query classifier.

Query: %q

Classify this query and return JSON:
{
    "intent": "do" | "learn" | "trouble",
    "category": "application" | "data" | "unknown",
    "topics": ["topic1", "topic2", ...],
    "confidence": 0.0-1.0
}

Intent rules (PRIMARY - always classify):
- "do": User wants to perform an action (show, add, create, configure, set up, remove, open, display, how to)
- "learn": User wants to understand concepts (what is, explain, definition, understand, learn about, describe)
- "trouble": User has a problem to solve (error, not working, issue, problem, fix, broken, failed, troubleshoot)

Category rules (SECONDARY - only if explicitly mentioned):
- "application": ONLY if query contains words: widget, interface, workspace, template, settings, menu, window, panel, toolbar
- "data": ONLY if query contains words: "data structure", "data format", "data content", "schema", "fields"
- "unknown": DEFAULT for all other cases

CRITICAL: Use category="unknown" unless the query literally contains the specific words listed above.

Examples:
- "show orderbook" -> intent=do, category=unknown (no widget/data keywords)
- "show orderbook widget" -> intent=do, category=application (contains "widget")
- "what is orderbook" -> intent=learn, category=unknown (no widget/data keywords)
- "explain orderbook data structure" -> intent=learn, category=data (contains "data structure")
- "add workspace" -> intent=do, category=unknown ("workspace" alone is ambiguous)
- "configure workspace settings" -> intent=do, category=application (contains "settings")

Topics: Extract 2-5 key terms or phrases from the query that represent the main subjects.

Confidence: 0.0-1.0 (how confident you are in the intent classification)

Return ONLY valid JSON, no other text.`

// buildClassificationPrompt formats the classification prompt for one query.
func buildClassificationPrompt(query string) string {
	return fmt.Sprintf(classificationPromptTemplate, query)
}

const answerSystemPrompt = "You are a helpful assistant that produces concise, factual answers. " +
	"Use the supplied context to answer the user's query. Cite relevant sections " +
	"by referencing their titles when useful. If the context is insufficient, say so."

// buildAnswerPrompt assembles the user message for answer generation:
// context, an optional source list, and the question.
func buildAnswerPrompt(query, contextText string, sources []ai.Source) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n")

	if len(sources) > 0 {
		b.WriteString("\nSources:\n")
		for _, src := range sources {
			title := src.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Fprintf(&b, "- %s (%s)\n", title, src.Origin)
		}
	}

	fmt.Fprintf(&b, "\nUser question: %s\n\nRespond with a helpful answer.", query)
	return b.String()
}
