// Package text holds the whitespace and length rules shared by chunk
// extraction and indexing.
package text

import (
	"strings"
)

// MinChunkWords is the minimum number of whitespace-delimited tokens a
// block needs before it is worth indexing.
const MinChunkWords = 10

// Normalize trims s and collapses every run of whitespace into one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// IsSubstantive reports whether s carries enough words to become a chunk.
func IsSubstantive(s string) bool {
	return WordCount(s) >= MinChunkWords
}
