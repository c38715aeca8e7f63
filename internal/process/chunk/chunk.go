// Package chunk splits work into bounded-size units so each unit fits a
// summarization backend's input budget. Two orthogonal chunkers are
// provided: one over item lists and one over rendered text.
package chunk

import (
	"strings"

	"github.com/mailsmart/mailsmart/internal/core/domain"
)

// Items splits items into contiguous groups of at most maxPerChunk.
// Concatenating the groups in order reconstructs the input. Empty input
// yields zero chunks, never a single empty chunk.
func Items(items []domain.Item, maxPerChunk int) [][]domain.Item {
	if len(items) == 0 {
		return nil
	}

	if maxPerChunk <= 0 {
		maxPerChunk = len(items)
	}

	chunks := make([][]domain.Item, 0, (len(items)+maxPerChunk-1)/maxPerChunk)

	for start := 0; start < len(items); start += maxPerChunk {
		end := start + maxPerChunk
		if end > len(items) {
			end = len(items)
		}

		chunks = append(chunks, items[start:end])
	}

	return chunks
}

// Text splits a text blob into pieces of at most maxWords whitespace-separated
// words, for backends with small input budgets. Empty or whitespace-only
// input yields zero chunks.
func Text(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if maxWords <= 0 {
		maxWords = len(words)
	}

	pieces := make([]string, 0, (len(words)+maxWords-1)/maxWords)

	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}

		pieces = append(pieces, strings.Join(words[start:end], " "))
	}

	return pieces
}
