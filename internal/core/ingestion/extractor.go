package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/ragstore/internal/core"
)

// DocconvExtractor implements core.TextExtractor using sajari/docconv, which
// dispatches on the MIME type (plain text, PDF, office formats).
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

func (e *DocconvExtractor) ExtractText(ctx context.Context, raw []byte, contentType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(raw), contentType, e.useReadability)
	if err != nil {
		log.Printf("docconv: extraction failed for content type %q: %v", contentType, err)
		return "", fmt.Errorf("extract %q: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.Body, nil
}

var _ core.TextExtractor = (*DocconvExtractor)(nil)
