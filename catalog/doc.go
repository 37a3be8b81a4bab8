// Package catalog builds and exposes the article graph extracted from
// annotated markdown documents.
//
// Articles are heading-delimited sections tagged with an HTML comment
// metadata block:
//
//	<!--METADATA
//	intent: do
//	id: editing_palette
//	category: application
//	synonyms: palette editor, color palette
//	codes: P100
//	see:
//	    - color_settings
//	-->
//	## Editing a Palette
//
// Extraction is a two-pass process: first every heading is flattened in
// document order and associated with the closest preceding metadata block
// not separated from it by another heading; then a stack groups the
// flattened sections so that untagged ("orphan") sections are folded into
// their nearest tagged ancestor, guaranteeing that no document content is
// lost. The resulting Catalog is immutable and safe for unlimited
// concurrent readers.
package catalog
