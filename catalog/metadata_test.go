package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/core"
)

func TestParseMetadata(t *testing.T) {
	t.Run("Minimal", func(t *testing.T) {
		meta, err := ParseMetadata(`<!-- METADATA
id: widget_list
intent: learn
category: application
-->`)
		require.NoError(t, err)
		assert.Equal(t, "widget_list", meta.ID)
		assert.Equal(t, core.IntentLearn, meta.Intent)
		assert.Equal(t, core.CategoryApplication, meta.Category)
		assert.Empty(t, meta.See)
		assert.Empty(t, meta.Synonyms)
		assert.Empty(t, meta.Codes)
	})

	t.Run("AllFields", func(t *testing.T) {
		meta, err := ParseMetadata(`<!-- METADATA
id: order-entry
intent: do
category: application
see:
- widget_list
- workspace_setup
synonyms: place order, order form
codes: oe, bo
-->`)
		require.NoError(t, err)
		assert.Equal(t, "order-entry", meta.ID)
		assert.Equal(t, core.IntentDo, meta.Intent)
		assert.Equal(t, []string{"widget_list", "workspace_setup"}, meta.See)
		assert.Equal(t, []string{"place order", "order form"}, meta.Synonyms)
		assert.Equal(t, []string{"OE", "BO"}, meta.Codes)
	})

	t.Run("InlineSee", func(t *testing.T) {
		meta, err := ParseMetadata(`<!-- METADATA
id: a
intent: learn
category: data
see: b
-->`)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, meta.See)
	})

	t.Run("CaseInsensitiveMarker", func(t *testing.T) {
		meta, err := ParseMetadata(`<!-- metadata
id: a
intent: learn
category: data
-->`)
		require.NoError(t, err)
		assert.Equal(t, "a", meta.ID)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		_, err := ParseMetadata(`<!-- METADATA
id: a
intent: learn
-->`)
		require.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("BadID", func(t *testing.T) {
		_, err := ParseMetadata(`<!-- METADATA
id: Widget List
intent: learn
category: application
-->`)
		require.ErrorIs(t, err, ErrInvalidMetadata)
	})

	t.Run("BadIntent", func(t *testing.T) {
		_, err := ParseMetadata(`<!-- METADATA
id: a
intent: explore
category: application
-->`)
		require.ErrorIs(t, err, ErrInvalidMetadata)
	})

	t.Run("UnknownCategoryRejected", func(t *testing.T) {
		_, err := ParseMetadata(`<!-- METADATA
id: a
intent: learn
category: unknown
-->`)
		require.ErrorIs(t, err, ErrInvalidMetadata)
	})

	t.Run("NotAMetadataComment", func(t *testing.T) {
		_, err := ParseMetadata(`<!-- just a comment -->`)
		require.ErrorIs(t, err, ErrInvalidMetadata)
	})
}
