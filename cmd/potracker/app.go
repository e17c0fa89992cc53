package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/po-tracker/internal/catalog"
	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/extract"
	"github.com/joseph-ayodele/po-tracker/internal/ocr"
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/qclause"
	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

// app holds the components every subcommand shares.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	resolver  *partnumber.Resolver
	assembler *record.Assembler
}

func newApp(cfg *common.Config, logger *slog.Logger) (*app, error) {
	cat := catalog.LoadOrEmpty(cfg.Catalog.Path, logger)
	resolver := partnumber.NewResolver(cat, logger)

	var rules *qclause.RuleTable
	if cfg.Rules.Path != "" {
		var err error
		if rules, err = qclause.LoadRuleTable(cfg.Rules.Path); err != nil {
			return nil, err
		}
		logger.Info("loaded quality clause rules", "path", cfg.Rules.Path, "rules", len(rules.Codes()))
	}

	ext, err := extract.New(extract.DefaultConfig(), resolver, rules, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		resolver:  resolver,
		assembler: record.NewAssembler(ext, nil, logger),
	}, nil
}

// textSource builds the pdftotext/tesseract backed text acquisition.
func (a *app) textSource() extract.TextSource {
	oc := a.cfg.OCR
	return extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:           oc.Pdftotext,
		Pdftoppm:            oc.Pdftoppm,
		Tesseract:           oc.Tesseract,
		TesseractLang:       oc.TesseractLang,
		TessdataDir:         oc.TessdataDir,
		DPI:                 oc.DPI,
		MinTextLength:       oc.MinTextLength,
		EnableTSVConfidence: true,
		PSM:                 6,
		CommandTimeout:      oc.CommandTimeout,
	}, a.logger))
}

// openRepo opens the configured record store. required reports whether a
// missing store configuration is an error.
func (a *app) openRepo(ctx context.Context, required bool) (repository.RecordRepository, error) {
	if a.cfg.Database.Driver == "" {
		if required {
			return nil, common.ConfigError("no record store configured: set database.driver and database.url")
		}
		return nil, nil
	}
	return repository.Open(ctx, a.cfg.Database, a.logger)
}
