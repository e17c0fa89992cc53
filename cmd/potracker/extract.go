package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/po-tracker/internal/core"
	"github.com/joseph-ayodele/po-tracker/internal/core/async"
	"github.com/joseph-ayodele/po-tracker/internal/export"
	"github.com/joseph-ayodele/po-tracker/internal/ingest"
	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

// fileOutput is one element of the extract command's JSON output.
type fileOutput struct {
	File   string         `json:"file"`
	ID     string         `json:"id,omitempty"`
	Record *record.Record `json:"record,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func extractCmd() *cobra.Command {
	var (
		outPath  string
		xlsxPath string
		store    bool
		workers  int
		quiet    bool

		includeHidden  bool
		skipDuplicates bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file|dir>...",
		Short: "Extract purchase-order fields from files",
		Long: `Extract reads every given file (directories are walked for .pdf, .txt and
image files), extracts the purchase-order fields and prints one JSON record
per file. Use --xlsx to also write a workbook and --store to persist the
records in the configured database.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			found, stats, err := ingest.NewScanner(!includeHidden, logger).Collect(args)
			if err != nil {
				return err
			}
			files := make([]string, 0, len(found))
			for _, f := range found {
				if f.Deduplicated && skipDuplicates {
					continue
				}
				files = append(files, f.Path)
			}
			logger.Debug("input files", "scanned", stats.Scanned, "matched", stats.Matched, "duplicates", stats.Deduplicated)
			if len(files) == 0 {
				return fmt.Errorf("no supported files found")
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			var repo repository.RecordRepository
			if store {
				if repo, err = a.openRepo(ctx, true); err != nil {
					return err
				}
				defer func() { _ = repo.Close() }()
			}

			proc := core.NewProcessor(logger, a.textSource(), a.assembler, repo)

			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(len(files),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("extracting"),
					progressbar.OptionShowElapsedTimeOnFinish(),
				)
			}

			var mu sync.Mutex
			results := make(map[string]fileOutput, len(files))
			q := async.NewProcessorQueue(proc, logger,
				async.WithWorkers(workers),
				async.WithQueueSize(len(files)),
				async.WithResultFunc(func(job async.Job, res core.Result, err error) {
					out := fileOutput{File: job.Path, Record: res.Record}
					if err != nil {
						out.Error = err.Error()
					}
					if res.StoredID != uuid.Nil {
						out.ID = res.StoredID.String()
					}
					mu.Lock()
					results[job.Path] = out
					if bar != nil {
						_ = bar.Add(1)
					}
					mu.Unlock()
				}),
			)
			for _, f := range files {
				if err := q.Enqueue(ctx, async.Job{Path: f}); err != nil {
					return err
				}
			}
			q.Shutdown(ctx)
			if bar != nil {
				_ = bar.Finish()
			}

			outputs := make([]fileOutput, 0, len(files))
			failed := 0
			for _, f := range files {
				out, ok := results[f]
				if !ok {
					out = fileOutput{File: f, Error: "not processed"}
				}
				if out.Error != "" {
					failed++
				}
				outputs = append(outputs, out)
			}

			if err := writeJSON(cmd.OutOrStdout(), outPath, outputs); err != nil {
				return err
			}
			if xlsxPath != "" {
				if err := writeWorkbook(xlsxPath, outputs, logger); err != nil {
					return err
				}
			}

			logger.Info("extraction finished", "files", len(files), "failed", failed)
			if failed == len(files) {
				return fmt.Errorf("all %d files failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the records to this workbook")
	cmd.Flags().BoolVar(&store, "store", false, "persist records in the configured database")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of files processed concurrently")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files and directories")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "skip files whose content was already seen")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func writeJSON(stdout io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeWorkbook(path string, outputs []fileOutput, logger *slog.Logger) error {
	rows := make([]export.Row, 0, len(outputs))
	for _, o := range outputs {
		if o.Record != nil {
			rows = append(rows, export.Row{Source: filepath.Base(o.File), Record: o.Record})
		}
	}
	data, err := export.NewService(nil, logger).RecordsXLSX(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logger.Info("workbook written", "path", path, "rows", len(rows))
	return nil
}
