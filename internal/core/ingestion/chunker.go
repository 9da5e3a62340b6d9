package ingestion

import (
	"fmt"
	"strconv"
)

// Chunk is one overlapping window of a document's text. Metadata carries the
// character offsets the window was cut at; the caller assigns 1-based order
// from the slice position.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// SplitText partitions text into windows of chunkSize characters where each
// window after the first starts chunkSize-overlapSize characters after the
// previous one, so consecutive windows share overlapSize characters. The
// final window is truncated to whatever remains, never padded. Empty text
// yields an empty slice.
//
// overlapSize must sit in [0, chunkSize); anything else is a configuration
// error reported to the caller, never clamped. Pure function of its inputs.
func SplitText(text string, chunkSize, overlapSize int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlapSize < 0 || overlapSize >= chunkSize {
		return nil, fmt.Errorf("overlap size %d must be in [0, %d)", overlapSize, chunkSize)
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return []Chunk{}, nil
	}

	stride := chunkSize - overlapSize
	chunks := make([]Chunk, 0, (n+stride-1)/stride)
	for start := 0; start < n; start += stride {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{
			Text: string(runes[start:end]),
			Metadata: map[string]string{
				"start_offset": strconv.Itoa(start),
				"end_offset":   strconv.Itoa(end),
			},
		})
		if end == n {
			break
		}
	}
	return chunks, nil
}
