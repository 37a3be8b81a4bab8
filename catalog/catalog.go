package catalog

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/RaymonMudrig/ManualBook/core"
)

// Builder accumulates annotated markdown documents and produces an
// immutable Catalog. It is not safe for concurrent use; build once, then
// share the Catalog freely.
type Builder struct {
	articles []*core.Article
	warnings []string
	seen     map[string]bool
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// NewBuilder creates an empty catalog builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		seen:   make(map[string]bool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddMarkdown extracts articles from one markdown document and adds them to
// the build. Malformed sections degrade to orphans and are reported as
// warnings; AddMarkdown never fails the build.
func (b *Builder) AddMarkdown(source string, src []byte) {
	var warnings []string
	sections := extractSections(src, &warnings)
	articles := groupSections(sections, b.seen, &warnings)

	for _, w := range warnings {
		b.logger.Warn("catalog build warning", "source", source, "detail", w)
		b.warnings = append(b.warnings, fmt.Sprintf("%s: %s", source, w))
	}

	b.articles = append(b.articles, articles...)
	b.logger.Info("extracted articles", "source", source, "count", len(articles))
}

// Build finalizes the catalog: derives children lists from parent ids,
// validates referential integrity, and freezes the graph. Validation
// failures are warnings, never fatal.
func (b *Builder) Build() *Catalog {
	// Children are the derived inverse of ParentID, in document order.
	byID := make(map[string]*core.Article, len(b.articles))
	for _, a := range b.articles {
		byID[a.ID] = a
	}
	for _, a := range b.articles {
		if a.ParentID == "" {
			continue
		}
		if parent, ok := byID[a.ParentID]; ok {
			parent.ChildrenIDs = append(parent.ChildrenIDs, a.ID)
		}
	}

	warnings := append([]string{}, b.warnings...)
	warnings = append(warnings, core.ValidateGraph(b.articles)...)

	order := make([]string, 0, len(b.articles))
	for _, a := range b.articles {
		order = append(order, a.ID)
	}

	return &Catalog{
		byID:     byID,
		order:    order,
		warnings: warnings,
	}
}

// FromArticles reconstructs a catalog from previously stored articles,
// for example when reopening a store that was populated by an earlier
// build. The articles are taken as already finalized: parent and children
// links are kept as stored, and no validation is re-run.
func FromArticles(articles []*core.Article) *Catalog {
	byID := make(map[string]*core.Article, len(articles))
	order := make([]string, 0, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
		order = append(order, a.ID)
	}
	return &Catalog{byID: byID, order: order}
}

// Catalog is the immutable post-build article graph. All methods are pure
// reads and safe for unlimited concurrent readers.
type Catalog struct {
	byID     map[string]*core.Article
	order    []string
	warnings []string
}

// Related bundles the articles connected to one article.
type Related struct {
	Parent   *core.Article
	Children []*core.Article
	SeeAlso  []*core.Article
	Siblings []*core.Article
}

// Article returns the article with the given id.
// Returns ErrArticleNotFound if no such article exists.
func (c *Catalog) Article(id string) (*core.Article, error) {
	a, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrArticleNotFound, id)
	}
	return a, nil
}

// Articles returns all articles in document order.
func (c *Catalog) Articles() []*core.Article {
	out := make([]*core.Article, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of articles in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// SearchByMetadata returns the articles matching the given intent and
// category. A zero-value intent or category acts as a wildcard;
// CategoryUnknown also matches everything, mirroring how the retriever
// omits unresolved categories from its filter.
func (c *Catalog) SearchByMetadata(intent core.Intent, category core.Category) []*core.Article {
	var out []*core.Article
	for _, id := range c.order {
		a := c.byID[id]
		if intent != "" && a.Intent != intent {
			continue
		}
		if category != "" && category != core.CategoryUnknown && a.Category != category {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Related returns the parent, children, see-also, and sibling articles of
// the article with the given id. Dangling references are skipped silently:
// they were already reported as build warnings.
func (c *Catalog) Related(id string) (Related, error) {
	a, ok := c.byID[id]
	if !ok {
		return Related{}, fmt.Errorf("%w: %q", ErrArticleNotFound, id)
	}

	var rel Related
	if a.ParentID != "" {
		if parent, ok := c.byID[a.ParentID]; ok {
			rel.Parent = parent
			for _, sibID := range parent.ChildrenIDs {
				if sibID == id {
					continue
				}
				if sib, ok := c.byID[sibID]; ok {
					rel.Siblings = append(rel.Siblings, sib)
				}
			}
		}
	}
	for _, childID := range a.ChildrenIDs {
		if child, ok := c.byID[childID]; ok {
			rel.Children = append(rel.Children, child)
		}
	}
	for _, seeID := range a.SeeAlsoIDs {
		if see, ok := c.byID[seeID]; ok {
			rel.SeeAlso = append(rel.SeeAlso, see)
		}
	}
	return rel, nil
}

// Warnings returns the build warnings collected while constructing the
// catalog, in occurrence order.
func (c *Catalog) Warnings() []string {
	return c.warnings
}

// CountByIntent returns the number of articles per intent.
func (c *Catalog) CountByIntent() map[core.Intent]int {
	counts := make(map[core.Intent]int)
	for _, a := range c.byID {
		counts[a.Intent]++
	}
	return counts
}

// CountByCategory returns the number of articles per category.
func (c *Catalog) CountByCategory() map[core.Category]int {
	counts := make(map[core.Category]int)
	for _, a := range c.byID {
		counts[a.Category]++
	}
	return counts
}

// IDs returns all article ids, sorted, primarily for stats and debugging.
func (c *Catalog) IDs() []string {
	ids := append([]string{}, c.order...)
	sort.Strings(ids)
	return ids
}
