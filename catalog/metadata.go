package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RaymonMudrig/ManualBook/core"
)

// Metadata holds the parsed contents of one METADATA comment block.
type Metadata struct {
	ID       string
	Intent   core.Intent
	Category core.Category
	See      []string
	Synonyms []string
	Codes    []string
}

var (
	metadataBlockPattern = regexp.MustCompile(`(?is)<!--\s*metadata\s*\n(.*?)\n?\s*-->`)
	metadataIDPattern    = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// isMetadataComment reports whether raw looks like a METADATA comment block.
func isMetadataComment(raw string) bool {
	return metadataBlockPattern.MatchString(raw)
}

// ParseMetadata parses a METADATA HTML comment block.
// Returns ErrInvalidMetadata (or ErrMissingField) when the block is
// malformed; callers treat the owning section as an orphan in that case.
func ParseMetadata(raw string) (*Metadata, error) {
	m := metadataBlockPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: no METADATA comment found", ErrInvalidMetadata)
	}
	return parseMetadataText(m[1])
}

// parseMetadataText parses the body of a metadata block: "key: value" lines,
// where an empty value introduces a "- item" list on the following lines.
func parseMetadataText(text string) (*Metadata, error) {
	fields := make(map[string]string)
	lists := make(map[string][]string)

	var currentList string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") {
			if currentList == "" {
				return nil, fmt.Errorf("%w: list item without a key: %q", ErrInvalidMetadata, line)
			}
			if item := strings.TrimSpace(line[1:]); item != "" {
				lists[currentList] = append(lists[currentList], item)
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: malformed line: %q", ErrInvalidMetadata, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if value == "" {
			// Empty value means a list follows.
			currentList = key
			continue
		}
		fields[key] = value
		currentList = ""
	}

	return buildMetadata(fields, lists)
}

func buildMetadata(fields map[string]string, lists map[string][]string) (*Metadata, error) {
	for _, required := range []string{"id", "intent", "category"} {
		if fields[required] == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, required)
		}
	}

	id := fields["id"]
	if !metadataIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: id %q must be lowercase alphanumeric with underscore or hyphen", ErrInvalidMetadata, id)
	}

	intent, ok := core.ParseIntent(fields["intent"])
	if !ok {
		return nil, fmt.Errorf("%w: intent %q must be one of do, learn, trouble", ErrInvalidMetadata, fields["intent"])
	}

	category, ok := core.ParseCategory(fields["category"])
	if !ok || category == core.CategoryUnknown {
		return nil, fmt.Errorf("%w: category %q must be application or data", ErrInvalidMetadata, fields["category"])
	}

	meta := &Metadata{
		ID:       id,
		Intent:   intent,
		Category: category,
		See:      lists["see"],
	}

	// "see" may also be given as a single inline value.
	if see := fields["see"]; see != "" {
		meta.See = append(meta.See, see)
	}

	// Synonyms are comma-separated phrases.
	meta.Synonyms = splitCommaList(fields["synonyms"], false)
	meta.Synonyms = append(meta.Synonyms, lists["synonyms"]...)

	// Codes are comma-separated short identifiers, stored upper-cased.
	meta.Codes = splitCommaList(fields["codes"], true)
	for _, c := range lists["codes"] {
		meta.Codes = append(meta.Codes, strings.ToUpper(strings.TrimSpace(c)))
	}

	return meta, nil
}

func splitCommaList(value string, upper bool) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}
