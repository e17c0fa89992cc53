package extract

import (
	"context"

	"github.com/joseph-ayodele/po-tracker/internal/ocr"
)

// OCRAdapter exposes an ocr.Extractor as a TextSource.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (SourceText, error) {
	r, err := a.e.Extract(ctx, path)
	return SourceText{
		Path:       path,
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: string(r.SourceType),
		Method:     r.Method,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, err
}
