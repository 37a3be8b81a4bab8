package ingestion

import "strings"

const defaultChunkSize = 1200

// splitIntoChunks splits article content into paragraph-bounded chunks of
// at most maxLen characters. Paragraphs are never cut: a paragraph longer
// than maxLen becomes a chunk of its own, so chunk boundaries always fall
// on blank lines.
func splitIntoChunks(content string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = defaultChunkSize
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxLen {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}
