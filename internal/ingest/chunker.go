package ingest

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how document text is split into storage chunks.
type ChunkConfig struct {
	// TargetChars is the upper bound on chunk length in runes.
	TargetChars int
	// MinChars is how far back a chunk boundary may move looking for
	// whitespace before giving up and cutting mid-word.
	MinChars int
	// Overlap is how many runes consecutive chunks share, preserving
	// context that crosses a boundary.
	Overlap int
}

// DefaultChunkConfig returns the standard ingestion chunking policy.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		TargetChars: 1000,
		MinChars:    300,
		Overlap:     200,
	}
}

// SplitText splits text into overlapping windows of at most
// cfg.TargetChars runes, preferring to cut at whitespace. Empty input
// yields no chunks.
func SplitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.TargetChars <= 0 {
		cfg = DefaultChunkConfig()
	}

	runes := []rune(clean)
	if len(runes) <= cfg.TargetChars {
		return []string{clean}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + cfg.TargetChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			end = cutAtWhitespace(runes, start, end, cfg.MinChars)
		}
		if end <= start {
			break
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			next = end - cfg.Overlap
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// cutAtWhitespace walks back from end looking for a whitespace boundary,
// but never further back than minChars past start.
func cutAtWhitespace(runes []rune, start, end, minChars int) int {
	floor := start + minChars
	if floor > end {
		floor = start
	}
	for i := end; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
