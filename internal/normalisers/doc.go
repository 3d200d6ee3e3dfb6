// Package normalisers provides the registry that dispatches files to the
// Normaliser implementations in its subpackages. Each normaliser knows how
// to extract text content from specific MIME types.
package normalisers
