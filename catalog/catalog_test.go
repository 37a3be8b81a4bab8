package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/core"
)

const sampleDoc = `# Widgets Guide

Introductory text before any tagged section.

<!-- METADATA
id: widgets
intent: learn
category: application
synonyms: components, controls
-->
## Widgets Overview

Widgets are the building blocks of the workspace.

![overview diagram](img/widgets.png)

<!-- METADATA
id: widget_list
intent: learn
category: application
codes: wl
see:
- widget_add
-->
### Widget List

Every available widget and what it does.

### Notes on Styling

Orphan subsection folded into the previous article.

<!-- METADATA
id: widget_add
intent: do
category: application
-->
### Adding a Widget

Click the plus button on the toolbar.
`

func buildSample(t *testing.T) *Catalog {
	t.Helper()
	b := NewBuilder()
	b.AddMarkdown("guide.md", []byte(sampleDoc))
	return b.Build()
}

func TestBuilder(t *testing.T) {
	t.Run("ArticleCount", func(t *testing.T) {
		cat := buildSample(t)
		assert.Equal(t, 3, cat.Len())
	})

	t.Run("ClosestMetadataWins", func(t *testing.T) {
		b := NewBuilder()
		b.AddMarkdown("doc.md", []byte(`<!-- METADATA
id: first
intent: learn
category: data
-->
<!-- METADATA
id: second
intent: learn
category: data
-->
## Heading

Body.
`))
		cat := b.Build()
		require.Equal(t, 1, cat.Len())
		_, err := cat.Article("second")
		assert.NoError(t, err)
		_, err = cat.Article("first")
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})

	t.Run("HierarchyFromHeadingLevels", func(t *testing.T) {
		cat := buildSample(t)
		parent, err := cat.Article("widgets")
		require.NoError(t, err)
		assert.Equal(t, "", parent.ParentID)
		assert.Equal(t, []string{"widget_list", "widget_add"}, parent.ChildrenIDs)

		child, err := cat.Article("widget_list")
		require.NoError(t, err)
		assert.Equal(t, "widgets", child.ParentID)
		assert.Equal(t, 3, child.HeadingLevel)
	})

	t.Run("NoContentLoss", func(t *testing.T) {
		cat := buildSample(t)

		// The leading untagged section is dropped with a warning; every
		// other line of the document must survive in some article.
		var all strings.Builder
		for _, a := range cat.Articles() {
			all.WriteString(a.Content)
			all.WriteString("\n")
		}
		joined := all.String()
		assert.Contains(t, joined, "building blocks of the workspace")
		assert.Contains(t, joined, "Every available widget")
		assert.Contains(t, joined, "Orphan subsection folded")
		assert.Contains(t, joined, "Click the plus button")
	})

	t.Run("OrphanFoldedIntoAncestor", func(t *testing.T) {
		cat := buildSample(t)
		// "Notes on Styling" is level 3 like widget_list, so it folds into
		// the level 2 ancestor after the stack pops.
		parent, err := cat.Article("widgets")
		require.NoError(t, err)
		assert.Contains(t, parent.Content, "Orphan subsection folded")
	})

	t.Run("LeadingOrphanWarned", func(t *testing.T) {
		cat := buildSample(t)
		found := false
		for _, w := range cat.Warnings() {
			if strings.Contains(w, "precedes any tagged section") {
				found = true
			}
		}
		assert.True(t, found, "expected a dropped leading orphan warning, got %v", cat.Warnings())
	})

	t.Run("MalformedMetadataDegrades", func(t *testing.T) {
		b := NewBuilder()
		b.AddMarkdown("good.md", []byte(`<!-- METADATA
id: root
intent: learn
category: application
-->
# Root

Root content.

<!-- METADATA
id: Bad ID Here
intent: learn
category: application
-->
## Broken

Broken section content.
`))
		cat := b.Build()
		require.Equal(t, 1, cat.Len())
		root, err := cat.Article("root")
		require.NoError(t, err)
		assert.Contains(t, root.Content, "Broken section content")
		assert.NotEmpty(t, cat.Warnings())
	})

	t.Run("DuplicateIDDemotedToOrphan", func(t *testing.T) {
		b := NewBuilder()
		b.AddMarkdown("a.md", []byte(`<!-- METADATA
id: dup
intent: learn
category: data
-->
# First

First content.
`))
		b.AddMarkdown("b.md", []byte(`<!-- METADATA
id: dup
intent: learn
category: data
-->
# Second

Second content.
`))
		cat := b.Build()
		require.Equal(t, 1, cat.Len())
		a, err := cat.Article("dup")
		require.NoError(t, err)
		assert.Contains(t, a.Content, "First content")
		assert.Contains(t, a.Content, "Second content")
	})

	t.Run("Images", func(t *testing.T) {
		cat := buildSample(t)
		a, err := cat.Article("widgets")
		require.NoError(t, err)
		assert.Equal(t, []string{"img/widgets.png"}, a.Images)
	})

	t.Run("DanglingSeeAlsoWarned", func(t *testing.T) {
		b := NewBuilder()
		b.AddMarkdown("doc.md", []byte(`<!-- METADATA
id: a
intent: learn
category: data
see: nowhere
-->
# A

Body.
`))
		cat := b.Build()
		found := false
		for _, w := range cat.Warnings() {
			if strings.Contains(w, "nowhere") {
				found = true
			}
		}
		assert.True(t, found, "expected dangling see reference warning, got %v", cat.Warnings())
	})
}

func TestCatalogQueries(t *testing.T) {
	cat := buildSample(t)

	t.Run("SearchByMetadata", func(t *testing.T) {
		learn := cat.SearchByMetadata(core.IntentLearn, core.CategoryApplication)
		require.Len(t, learn, 2)
		assert.Equal(t, "widgets", learn[0].ID)
		assert.Equal(t, "widget_list", learn[1].ID)

		doAll := cat.SearchByMetadata(core.IntentDo, "")
		require.Len(t, doAll, 1)
		assert.Equal(t, "widget_add", doAll[0].ID)
	})

	t.Run("SearchWildcard", func(t *testing.T) {
		assert.Len(t, cat.SearchByMetadata("", ""), 3)
		assert.Len(t, cat.SearchByMetadata("", core.CategoryUnknown), 3)
	})

	t.Run("Related", func(t *testing.T) {
		rel, err := cat.Related("widget_list")
		require.NoError(t, err)
		require.NotNil(t, rel.Parent)
		assert.Equal(t, "widgets", rel.Parent.ID)
		require.Len(t, rel.Siblings, 1)
		assert.Equal(t, "widget_add", rel.Siblings[0].ID)
		require.Len(t, rel.SeeAlso, 1)
		assert.Equal(t, "widget_add", rel.SeeAlso[0].ID)
		assert.Empty(t, rel.Children)
	})

	t.Run("RelatedMissing", func(t *testing.T) {
		_, err := cat.Related("absent")
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})

	t.Run("Counts", func(t *testing.T) {
		assert.Equal(t, map[core.Intent]int{core.IntentLearn: 2, core.IntentDo: 1}, cat.CountByIntent())
		assert.Equal(t, map[core.Category]int{core.CategoryApplication: 3}, cat.CountByCategory())
	})
}
