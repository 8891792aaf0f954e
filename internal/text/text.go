// Package text splits extracted book text into the word stream that playback
// and pagination consume.
package text

import "strings"

// Tokenize splits s on runs of Unicode whitespace. Punctuation stays attached
// to its word; the result contains no empty strings.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// SentenceStarts returns the indices of words that begin sentences: index 0,
// plus every word following one that ends with sentence punctuation. Returns
// nil for an empty stream.
func SentenceStarts(words []string) []int {
	if len(words) == 0 {
		return nil
	}
	starts := []int{0}
	for i, w := range words {
		if i+1 >= len(words) {
			break
		}
		switch w[len(w)-1] {
		case '.', '!', '?':
			starts = append(starts, i+1)
		}
	}
	return starts
}
