package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIntoChunks(t *testing.T) {
	t.Run("short content is one chunk", func(t *testing.T) {
		chunks := splitIntoChunks("## Title\n\nA short paragraph.", 1200)
		assert.Equal(t, []string{"## Title\n\nA short paragraph."}, chunks)
	})

	t.Run("splits on paragraph boundaries", func(t *testing.T) {
		a := strings.Repeat("a", 80)
		b := strings.Repeat("b", 80)
		c := strings.Repeat("c", 80)
		chunks := splitIntoChunks(a+"\n\n"+b+"\n\n"+c, 170)

		assert.Equal(t, []string{a + "\n\n" + b, c}, chunks)
	})

	t.Run("oversized paragraph kept whole", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		chunks := splitIntoChunks("intro\n\n"+long+"\n\ncoda", 100)

		assert.Equal(t, []string{"intro", long, "coda"}, chunks)
	})

	t.Run("no content loss", func(t *testing.T) {
		content := "one\n\ntwo\n\nthree\n\nfour"
		chunks := splitIntoChunks(content, 9)
		assert.Equal(t, content, strings.Join(chunks, "\n\n"))
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Empty(t, splitIntoChunks("", 1200))
		assert.Empty(t, splitIntoChunks("\n\n\n\n", 1200))
	})
}
