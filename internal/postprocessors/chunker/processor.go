// Package chunker splits document text into paragraph and sentence chunks.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultMaxLength is the default maximum number of characters per chunk.
const DefaultMaxLength = 800

const (
	paragraphSep = "\n\n"
	sentenceSep  = ". "
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker keeps short paragraphs whole and packs the sentences of long
// paragraphs into chunks of at most maxLength characters. A single sentence
// longer than maxLength becomes its own oversized chunk.
type Chunker struct {
	maxLength int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxLength sets the maximum chunk length in characters.
func WithMaxLength(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "chunker"
}

// MaxLength returns the configured maximum chunk length.
func (c *Chunker) MaxLength() int {
	return c.maxLength
}

// Split splits text into chunks.
func (c *Chunker) Split(text string) []string {
	var chunks []string

	for _, p := range strings.Split(text, paragraphSep) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) <= c.maxLength {
			chunks = append(chunks, p)
			continue
		}
		chunks = append(chunks, c.packSentences(p)...)
	}

	return chunks
}

func (c *Chunker) packSentences(paragraph string) []string {
	var out []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, strings.TrimSpace(buf.String()))
		}
		buf.Reset()
		bufLen = 0
	}

	for _, s := range strings.Split(paragraph, sentenceSep) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n := utf8.RuneCountInString(s)
		if bufLen+n+2 > c.maxLength {
			flush()
		}
		buf.WriteString(s)
		buf.WriteString(sentenceSep)
		bufLen += n + 2
	}
	flush()

	return out
}
