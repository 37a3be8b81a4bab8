package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyQuery indicates an empty or whitespace-only query string.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrQueryTooLong indicates a query over the maximum accepted length.
	ErrQueryTooLong = errors.New("query is too long")

	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrEmptyArticleID indicates the article ID field is empty.
	ErrEmptyArticleID = errors.New("article id cannot be empty")

	// ErrInvalidArticleID indicates an article ID with characters outside
	// lowercase letters, digits, underscore, and hyphen.
	ErrInvalidArticleID = errors.New("article id must be lowercase alphanumeric with underscore or hyphen")

	// ErrInvalidIntent indicates an intent outside do, learn, trouble.
	ErrInvalidIntent = errors.New("invalid intent")

	// ErrInvalidCategory indicates a category outside application, data.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidHeadingLevel indicates a heading level outside 1-6.
	ErrInvalidHeadingLevel = errors.New("heading level must be between 1 and 6")
)
