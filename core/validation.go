package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var articleIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// MaxQueryLength caps the accepted query size at request entry.
const MaxQueryLength = 1000

// CleanQuery normalizes and validates a raw query string before it enters
// the pipeline. Collapses internal whitespace. Returns ErrEmptyQuery for
// empty or whitespace-only input and ErrQueryTooLong over MaxQueryLength.
func CleanQuery(query string) (string, error) {
	cleaned := strings.TrimSpace(query)
	if cleaned == "" {
		return "", ErrEmptyQuery
	}
	if len(cleaned) > MaxQueryLength {
		return "", ErrQueryTooLong
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return cleaned, nil
}

// Truncate shortens s to at most max bytes, backing up to the nearest rune
// boundary so a multi-byte character is never split.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - ID must be non-empty, lowercase alphanumeric with underscore/hyphen
//   - Intent must be one of do, learn, trouble
//   - Category must be application or data (unknown is query-only)
//   - HeadingLevel must be 1-6
//
// NOT validated (resolved against the whole catalog, see ValidateGraph):
//   - ParentID and SeeAlsoIDs referential integrity
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyArticleID)
	}

	if !articleIDPattern.MatchString(article.ID) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArticle, ErrInvalidArticleID, article.ID)
	}

	if _, ok := ParseIntent(string(article.Intent)); !ok {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArticle, ErrInvalidIntent, article.Intent)
	}

	if article.Category != CategoryApplication && article.Category != CategoryData {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArticle, ErrInvalidCategory, article.Category)
	}

	if article.HeadingLevel < 1 || article.HeadingLevel > 6 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidArticle, ErrInvalidHeadingLevel, article.HeadingLevel)
	}

	return nil
}

// ValidateGraph checks referential integrity across a set of articles.
// Dangling parent or see-also references are build warnings, not fatal:
// the returned slice holds human-readable descriptions and the build
// proceeds regardless.
func ValidateGraph(articles []*Article) []string {
	known := make(map[string]bool, len(articles))
	var warnings []string

	for _, a := range articles {
		if known[a.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate article id %q", a.ID))
		}
		known[a.ID] = true
	}

	for _, a := range articles {
		if a.ParentID != "" && !known[a.ParentID] {
			warnings = append(warnings, fmt.Sprintf("article %q references missing parent %q", a.ID, a.ParentID))
		}
		for _, see := range a.SeeAlsoIDs {
			if !known[see] {
				warnings = append(warnings, fmt.Sprintf("article %q references missing see-also %q", a.ID, see))
			}
		}
	}

	return warnings
}
