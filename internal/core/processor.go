package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/po-tracker/constants"
	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/extract"
	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

// Result is the outcome of processing one purchase-order file.
type Result struct {
	Path     string
	Record   *record.Record
	Source   extract.SourceText
	StoredID uuid.UUID // uuid.Nil unless the record was stored
	Duration time.Duration
}

// Processor coordinates text acquisition, field extraction and, when a
// repository is configured, persistence of the assembled record.
type Processor struct {
	logger    *slog.Logger
	source    extract.TextSource
	assembler *record.Assembler
	repo      repository.RecordRepository
}

// NewProcessor wires a processor. repo may be nil.
func NewProcessor(logger *slog.Logger, source extract.TextSource, assembler *record.Assembler, repo repository.RecordRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, source: source, assembler: assembler, repo: repo}
}

// ProcessFile extracts text from path, assembles its record and stores it.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res := Result{Path: path}

	if !constants.IsAllowedExt(filepath.Ext(path)) {
		return res, common.NewAppError(common.CodeInput, fmt.Sprintf("unsupported file type: %s", path), common.ErrInvalidInput)
	}

	rec, src, err := p.assembler.AssembleFile(ctx, p.source, path)
	if err != nil {
		p.logger.Error("processor.extract.failed", "path", path, "err", err)
		return res, err
	}
	res.Record, res.Source = rec, src
	p.logger.Debug("processor text acquired",
		"path", path,
		"method", src.Method,
		"pages", src.Pages,
		"confidence", src.Confidence,
	)

	if err := record.Validate(rec); err != nil {
		p.logger.Error("processor.validate.failed", "path", path, "err", err)
		return res, common.WrapError(err, "record violates output contract")
	}

	if p.repo != nil {
		stored, err := p.repo.Save(ctx, filepath.Base(path), rec)
		if err != nil {
			p.logger.Error("processor.store.failed", "path", path, "err", err)
			return res, err
		}
		res.StoredID = stored.ID
	}

	res.Duration = time.Since(start)
	p.logger.Info("processed purchase order",
		append([]any{"path", path, "elapsed_ms", res.Duration.Milliseconds(), "stored", p.repo != nil}, rec.Summary()...)...,
	)
	return res, nil
}
