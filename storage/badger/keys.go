package badger

import (
	"fmt"

	"github.com/RaymonMudrig/ManualBook/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	articleRecordPrefix = "artrec"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeArticleKey generates a key for an article by its catalog id.
func makeArticleKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", articleRecordPrefix, id))
}
