// Package html turns uploaded or autoloaded HTML pages into plain text
// for chunking. Only visible text survives: script and style bodies are
// dropped and block elements become paragraph breaks, so the chunker
// splits on the same boundaries a reader sees.
package html
