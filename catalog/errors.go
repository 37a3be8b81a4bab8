package catalog

import "errors"

var (
	// ErrArticleNotFound is returned when no article exists for an id.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidMetadata indicates a metadata block that could not be parsed.
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrMissingField indicates a metadata block missing a required field.
	ErrMissingField = errors.New("missing required metadata field")
)
