package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/RaymonMudrig/ManualBook/core"
)

// section is one flattened heading-delimited block of a source document.
// Tagged sections carry the metadata of the closest preceding METADATA
// comment; orphan sections carry none.
type section struct {
	level   int
	heading string
	content string // raw markdown from the heading line to the section end
	meta    *Metadata
}

// docEvent is a heading or metadata comment located during the AST walk,
// in document order.
type docEvent struct {
	kind    int // eventHeading or eventMeta
	start   int // byte offset of the event's first line in the source
	level   int
	heading string
	raw     string // metadata comment text
}

const (
	eventHeading = iota
	eventMeta
)

var imagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)

// extractSections flattens a markdown document into heading-delimited
// sections. Pass one of the two-pass build: each heading is paired with the
// closest preceding METADATA comment that is not separated from it by
// another heading. A malformed metadata block demotes its section to an
// orphan and produces a warning.
func extractSections(src []byte, warnings *[]string) []section {
	events := collectEvents(src)

	var sections []section
	var pending *docEvent

	for i := range events {
		ev := &events[i]
		if ev.kind == eventMeta {
			// Closest wins: a later block replaces an earlier one.
			pending = ev
			continue
		}

		// Section content runs from the heading line to the next heading
		// or metadata comment, whichever comes first.
		end := len(src)
		if i+1 < len(events) {
			end = events[i+1].start
		}
		content := strings.TrimRight(string(src[ev.start:end]), "\n")

		sec := section{
			level:   ev.level,
			heading: ev.heading,
			content: content,
		}

		if pending != nil {
			meta, err := ParseMetadata(pending.raw)
			if err != nil {
				*warnings = append(*warnings, fmt.Sprintf("section %q: %v; treating as orphan", ev.heading, err))
			} else {
				sec.meta = meta
			}
			pending = nil
		}

		sections = append(sections, sec)
	}

	return sections
}

// collectEvents walks the top level of the goldmark AST and records every
// heading and METADATA comment with its byte offset, in document order.
func collectEvents(src []byte) []docEvent {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var events []docEvent
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Lines().Len() == 0 {
				continue
			}
			seg := node.Lines().At(0)
			events = append(events, docEvent{
				kind:    eventHeading,
				start:   lineStart(src, seg.Start),
				level:   node.Level,
				heading: strings.TrimSpace(string(seg.Value(src))),
			})
		case *ast.HTMLBlock:
			if node.Lines().Len() == 0 {
				continue
			}
			first := node.Lines().At(0)
			stop := node.Lines().At(node.Lines().Len() - 1).Stop
			if node.ClosureLine.Start > -1 {
				stop = node.ClosureLine.Stop
			}
			start := lineStart(src, first.Start)
			raw := string(src[start:stop])
			if isMetadataComment(raw) {
				events = append(events, docEvent{
					kind:  eventMeta,
					start: start,
					raw:   raw,
				})
			}
		}
	}
	return events
}

// lineStart returns the offset of the beginning of the line containing off.
func lineStart(src []byte, off int) int {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

// groupSections builds articles from flattened sections. Pass two of the
// two-pass build: a stack of (level, article) pairs tracks ancestry. A
// tagged section becomes a new article parented on the top of the stack;
// an orphan section is folded into the nearest tagged ancestor so that no
// content is dropped. seen tracks ids across documents so duplicates are
// demoted to orphans with a warning.
func groupSections(sections []section, seen map[string]bool, warnings *[]string) []*core.Article {
	type frame struct {
		level   int
		article *core.Article
	}

	var articles []*core.Article
	var stack []frame

	appendOrphan := func(sec section) {
		var target *core.Article
		switch {
		case len(stack) > 0:
			target = stack[len(stack)-1].article
		case len(articles) > 0:
			// No enclosing ancestor; keep the content anyway.
			target = articles[len(articles)-1]
			*warnings = append(*warnings, fmt.Sprintf("section %q has no tagged ancestor; appended to article %q", sec.heading, target.ID))
		default:
			*warnings = append(*warnings, fmt.Sprintf("section %q precedes any tagged section; content dropped", sec.heading))
			return
		}
		target.Content += "\n\n" + sec.content
		target.Images = append(target.Images, extractImages(sec.content)...)
	}

	for _, sec := range sections {
		// Entries at the same or deeper level are not ancestors.
		for len(stack) > 0 && stack[len(stack)-1].level >= sec.level {
			stack = stack[:len(stack)-1]
		}

		if sec.meta == nil {
			appendOrphan(sec)
			continue
		}

		if seen[sec.meta.ID] {
			*warnings = append(*warnings, fmt.Sprintf("duplicate article id %q in section %q; treating as orphan", sec.meta.ID, sec.heading))
			appendOrphan(sec)
			continue
		}
		seen[sec.meta.ID] = true

		article := &core.Article{
			ID:           sec.meta.ID,
			Title:        sec.heading,
			Intent:       sec.meta.Intent,
			Category:     sec.meta.Category,
			Content:      sec.content,
			HeadingLevel: sec.level,
			SeeAlsoIDs:   sec.meta.See,
			Synonyms:     sec.meta.Synonyms,
			Codes:        sec.meta.Codes,
			Images:       extractImages(sec.content),
		}
		if len(stack) > 0 {
			article.ParentID = stack[len(stack)-1].article.ID
		}

		articles = append(articles, article)
		stack = append(stack, frame{level: sec.level, article: article})
	}

	return articles
}

// extractImages returns the relative paths of all markdown image references.
func extractImages(content string) []string {
	var images []string
	for _, m := range imagePattern.FindAllStringSubmatch(content, -1) {
		images = append(images, m[1])
	}
	return images
}
