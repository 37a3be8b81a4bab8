package retrieval

import (
	"strings"
	"unicode"
)

// Stop words removed from queries before keyword overlap checks
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "my": true, "i": true, "how": true, "what": true,
	"where": true, "me": true,
}

// technicalVocabulary is the closed set of terms treated as "specific" when
// they appear verbatim in a query. Multi-word entries are checked as
// phrases; single words as tokens.
var technicalVocabulary = map[string]bool{
	"docker": true, "kubernetes": true, "linux": true, "windows": true,
	"macos": true, "python": true, "java": true, "javascript": true,
	"api": true, "rest": true, "websocket": true, "sql": true, "json": true,
	"xml": true, "csv": true, "ssl": true, "tls": true, "vpn": true,
	"proxy": true, "firewall": true, "database": true, "excel": true,
	"git": true, "ssh": true, "ftp": true, "http": true, "https": true,
	"data structure": true, "data format": true, "data feed": true,
	"market depth": true, "order book": true, "machine learning": true,
}

// genericTerms are action/question words excluded from the proper-noun
// heuristic even when capitalized (e.g. at sentence start).
var genericTerms = map[string]bool{
	"how": true, "what": true, "where": true, "when": true, "why": true,
	"who": true, "which": true, "show": true, "list": true, "display": true,
	"view": true, "install": true, "add": true, "create": true, "remove": true,
	"delete": true, "open": true, "close": true, "configure": true,
	"setup": true, "set": true, "use": true, "explain": true, "describe": true,
	"find": true, "help": true, "can": true, "please": true, "the": true,
}

// normalizeText lowercases, strips non-alphanumeric characters, and
// collapses separators into single spaces. "Widget-List_v2" and
// "widget list v2" normalize identically.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// keywords returns the normalized tokens of s with stop words removed.
func keywords(s string) []string {
	var out []string
	for _, word := range strings.Fields(normalizeText(s)) {
		if !stopWords[word] {
			out = append(out, word)
		}
	}
	return out
}

// wordSet builds a membership set from tokens.
func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// overlapRatio returns the fraction of query keywords present in the target
// set. Returns 0 for an empty query.
func overlapRatio(queryKeywords []string, target map[string]bool) float32 {
	if len(queryKeywords) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range queryKeywords {
		if target[kw] {
			hits++
		}
	}
	return float32(hits) / float32(len(queryKeywords))
}

// isSubset reports whether every word of sub is present in super.
func isSubset(sub []string, super map[string]bool) bool {
	if len(sub) == 0 {
		return false
	}
	for _, w := range sub {
		if !super[w] {
			return false
		}
	}
	return true
}

// extractSpecificTerms pulls the terms of a query that name a concrete
// technology or proper noun. Multi-word vocabulary phrases present verbatim
// win; otherwise any token that is in the vocabulary, or capitalized and
// longer than 2 characters, qualifies. Generic action/question words never
// qualify.
func extractSpecificTerms(query string) []string {
	lower := strings.ToLower(query)

	var terms []string
	seen := make(map[string]bool)
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	for phrase := range technicalVocabulary {
		if strings.Contains(phrase, " ") && strings.Contains(lower, phrase) {
			add(phrase)
		}
	}

	for _, token := range strings.Fields(query) {
		cleaned := strings.Trim(token, ".,!?;:'\"()[]{}")
		if cleaned == "" {
			continue
		}
		lowered := strings.ToLower(cleaned)
		if genericTerms[lowered] || stopWords[lowered] {
			continue
		}
		if technicalVocabulary[lowered] {
			add(lowered)
			continue
		}
		first := []rune(cleaned)[0]
		if unicode.IsUpper(first) && len([]rune(cleaned)) > 2 {
			add(lowered)
		}
	}

	return terms
}
