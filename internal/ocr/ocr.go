package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/po-tracker/constants"
	"github.com/joseph-ayodele/po-tracker/internal/common"
)

// DefaultMinTextLength is the text-layer size under which a PDF is treated as
// scanned and rasterized for OCR.
const DefaultMinTextLength = 50

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit
	MinTextLength int // default DefaultMinTextLength

	EnableTSVConfidence bool
	PSM                 int // e.g., 6 is good for uniform block of text

	CommandTimeout time.Duration // per tool call; default DefaultCommandTimeout, negative = none
}

// Result is the text of one source document.
type Result struct {
	Text       string
	Pages      int
	SourceType constants.SourceFormat
	Method     string // "text" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec-based runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger, timeout: max(cfg.CommandTimeout, 0)}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.TXT:
		res, err = e.readText(path)
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	default:
		e.logger.Error("unsupported extension", "path", path, "extension", ext)
		return Result{}, common.NewAppError(common.CodeInput, fmt.Sprintf("unsupported extension: %q", ext), common.ErrInvalidInput)
	}
	res.Duration = time.Since(start)
	if err == nil {
		e.logger.Debug("text extracted",
			"path", path,
			"method", res.Method,
			"pages", res.Pages,
			"chars", len(res.Text),
			"elapsed_ms", res.Duration.Milliseconds(),
		)
	}
	return res, err
}

func (e *Extractor) readText(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{SourceType: constants.TXT}, common.WrapError(err, "read text file")
	}
	return Result{
		Text:       string(b),
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "text",
		Confidence: 1,
	}, nil
}
