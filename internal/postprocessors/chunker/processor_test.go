package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		assert.Equal(t, DefaultMaxLength, c.MaxLength())
	})

	t.Run("custom max length", func(t *testing.T) {
		c := New(WithMaxLength(500))
		assert.Equal(t, 500, c.MaxLength())
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := New(WithMaxLength(0), WithMaxLength(-3))
		assert.Equal(t, DefaultMaxLength, c.MaxLength())
	})
}

func TestChunker_Name(t *testing.T) {
	assert.Equal(t, "chunker", New().Name())
}

func TestSplit_Empty(t *testing.T) {
	c := New()

	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\n  \n\n"))
}

func TestSplit_Paragraphs(t *testing.T) {
	c := New()

	chunks := c.Split("  First paragraph.  \n\nSecond paragraph.\n\n\n\nThird.")

	assert.Equal(t, []string{"First paragraph.", "Second paragraph.", "Third."}, chunks)
}

func TestSplit_LongParagraphPacksSentences(t *testing.T) {
	c := New(WithMaxLength(30))

	// Each sentence is 9 characters, so two fit with separators (22) but
	// three do not (33).
	para := "Sentence1. Sentence2. Sentence3. Sentence4"
	chunks := c.Split(para)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Sentence1. Sentence2.", chunks[0])
	assert.Equal(t, "Sentence3. Sentence4.", chunks[1])
}

func TestSplit_OversizedSentenceStandsAlone(t *testing.T) {
	c := New(WithMaxLength(20))

	long := strings.Repeat("x", 50)
	chunks := c.Split("short. " + long + ". tail")

	require.Len(t, chunks, 3)
	assert.Equal(t, "short.", chunks[0])
	assert.Equal(t, long+".", chunks[1])
	assert.Equal(t, "tail.", chunks[2])
}

func TestSplit_ChunksRespectMaxLength(t *testing.T) {
	c := New(WithMaxLength(100))

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("The quick brown fox jumps. ")
	}
	chunks := c.Split(sb.String())

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), 100)
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	c := New(WithMaxLength(10))

	// 10 runes, 20 bytes.
	para := strings.Repeat("é", 10)
	assert.Equal(t, []string{para}, c.Split(para))
}

func TestSplit_Deterministic(t *testing.T) {
	c := New(WithMaxLength(40))
	text := "Alpha beta. Gamma delta. Epsilon zeta eta theta.\n\nIota kappa."

	assert.Equal(t, c.Split(text), c.Split(text))
}
