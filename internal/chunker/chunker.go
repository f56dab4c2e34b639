package chunker

import (
	"fmt"
	"strings"
)

// Default chunking parameters used across the ingest pipeline.
const (
	DefaultSize    = 500
	DefaultOverlap = 80
)

// separators are checked in priority order when refining a window cut.
// Sentence endings win over bare word boundaries.
var separators = []string{". ", "! ", "? ", " "}

// Split breaks text into overlapping passages of at most size bytes.
//
// The walk advances by size-overlap per window. Windows that do not reach the
// end of the text are shortened to the last sentence or word boundary, but
// only when that boundary lies past the window midpoint; otherwise the raw
// fixed-length cut is kept. Output is deterministic for identical inputs.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	step := size - overlap
	if step <= 0 {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if len(text) <= size {
		return []string{text}, nil
	}

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		} else if end < len(text) {
			end = refineCut(text, start, end)
		}
		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if start+size >= len(text) {
			break
		}
	}
	return chunks, nil
}

// refineCut searches backward from end for the last separator occurrence and
// returns the position just after it, provided the cut lands past the window
// midpoint. Separator priority: sentence endings first, then a plain space.
func refineCut(text string, start, end int) int {
	mid := start + (end-start)/2
	window := text[start:end]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + idx + len(sep)
		if cut > mid {
			return cut
		}
	}
	return end
}
