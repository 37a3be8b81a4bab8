package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for content-addressed entities such as chunks.
// It is generated by hashing the entity's content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Intent classifies what the user wants from a query or what an article offers.
type Intent string

const (
	// IntentDo marks how-to content: the user wants to perform an action.
	IntentDo Intent = "do"
	// IntentLearn marks conceptual content: the user wants to understand something.
	IntentLearn Intent = "learn"
	// IntentTrouble marks problem-solving content: the user has something broken.
	IntentTrouble Intent = "trouble"
)

// ParseIntent parses an intent string. Returns false if the value is not
// one of do, learn, trouble.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentDo, IntentLearn, IntentTrouble:
		return Intent(s), true
	}
	return "", false
}

// Category classifies which knowledge domain a query or article concerns.
type Category string

const (
	// CategoryApplication covers UI features, widgets, and workspace behavior.
	CategoryApplication Category = "application"
	// CategoryData covers data structures, formats, and schemas.
	CategoryData Category = "data"
	// CategoryUnknown is the default when the domain cannot be determined.
	// Articles are never tagged unknown; only query classifications use it.
	CategoryUnknown Category = "unknown"
)

// ParseCategory parses a category string. Returns false if the value is not
// one of application, data, unknown.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryApplication, CategoryData, CategoryUnknown:
		return Category(s), true
	}
	return "", false
}

// Article is the atomic retrievable unit of the catalog: a metadata-tagged
// section of a source document, with orphan subsections folded into it.
// Articles are built once at catalog-build time and immutable at query time.
type Article struct {
	ID           string
	Title        string
	Intent       Intent
	Category     Category
	Content      string // full markdown body, heading included
	HeadingLevel int    // 1-6
	ParentID     string // nearest enclosing tagged heading, empty at root
	ChildrenIDs  []string
	SeeAlsoIDs   []string
	Images       []string
	Synonyms     []string
	Codes        []string
}

// Classification is the ephemeral per-query result of the query classifier.
type Classification struct {
	Intent     Intent   `json:"intent"`
	Category   Category `json:"category"`
	Topics     []string `json:"topics"`
	Confidence float32  `json:"confidence"`
}

// RetrievalResult is an ephemeral per-candidate scoring record produced by
// the catalog retriever. It lives for one query's lifetime.
type RetrievalResult struct {
	Article      *Article
	RawScore     float32 // similarity from the vector index, in [0,1]
	BoostedScore float32 // raw score plus lexical match boost, clamped to 1.0
	Relevance    float32 // lexical relevance from verification
	Relevant     bool
}

// Chunk is a sized segment of an article's content stored in the vector
// index. Chunks carry the article's metadata so the index can filter on it.
type Chunk struct {
	ID        ID
	ArticleID string
	Seq       int // position within the article
	Text      string
	Intent    Intent
	Category  Category
	Vector    []float32
}

// ChunkMatch is a chunk returned from vector similarity search with its score.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}

// WebResult is a single hit from the web search collaborator.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// TraceRecord describes the outcome of one pipeline stage. The ordered trace
// list is the system's primary observability mechanism and is returned
// alongside every answer.
type TraceRecord struct {
	Stage   string         `json:"stage"`
	Status  string         `json:"status"` // "success" or "failed"
	Detail  string         `json:"detail"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// Trace statuses.
const (
	TraceSuccess = "success"
	TraceFailed  = "failed"
)

// Mode labels the terminal state of the retrieval orchestrator.
type Mode string

const (
	// ModeCatalogRAG means relevant catalog articles answered the query.
	ModeCatalogRAG Mode = "catalog_rag"
	// ModeRAG means raw chunk retrieval answered the query.
	ModeRAG Mode = "rag"
	// ModeWeb means web search answered the query.
	ModeWeb Mode = "web"
	// ModeNone means every tier was exhausted without a usable result.
	ModeNone Mode = "none"
)
