package extract

import (
	"context"
	"time"
)

// TextSource is Stage 1: file -> text. Field extraction is Stage 2 and only
// ever sees the text.
type TextSource interface {
	Extract(ctx context.Context, path string) (SourceText, error)
}

type SourceText struct {
	Path       string
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | "TXT"
	Method     string // "text" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}
