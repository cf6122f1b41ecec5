// Package chunk splits extracted document text into bounded, overlapping
// pieces suitable for independent embedding.
package chunk

import (
	"strings"
	"unicode"
)

// Piece is one chunk of a larger text. StartChar and EndChar are rune
// offsets into the original input; ranges advance monotonically and
// consecutive pieces overlap by the configured amount.
type Piece struct {
	Content   string
	StartChar int
	EndChar   int
}

const (
	minChunkChars = 100
)

// Split divides text into pieces of at most maxChars runes, overlapping by
// overlap runes. The cut point prefers a whitespace boundary near the end of
// the window. Non-empty input always yields at least one piece; empty or
// whitespace-only input yields none.
func Split(text string, maxChars, overlap int) []Piece {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars / 2
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return []Piece{trimmedPiece(runes, 0, len(runes))}
	}

	pieces := make([]Piece, 0, len(runes)/maxChars+1)
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + minChunkChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		p := trimmedPiece(runes, start, end)
		if p.Content != "" {
			pieces = append(pieces, p)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if overlap > 0 && end-start > overlap {
			nextStart = end - overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return pieces
}

// trimmedPiece trims surrounding whitespace while keeping the offsets
// pointing at the retained runes.
func trimmedPiece(runes []rune, start, end int) Piece {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return Piece{
		Content:   string(runes[start:end]),
		StartChar: start,
		EndChar:   end,
	}
}
