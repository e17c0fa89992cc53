package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/po-tracker/internal/export"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

func exportCmd() *cobra.Command {
	var (
		outPath string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored records to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			repo, err := a.openRepo(ctx, true)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			data, err := export.NewService(repo, logger).ExportStoredXLSX(ctx, limit)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			logger.Info("workbook written", "path", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "purchase_orders.xlsx", "output workbook")
	cmd.Flags().IntVar(&limit, "limit", repository.DefaultListLimit, "maximum number of records")
	return cmd
}
