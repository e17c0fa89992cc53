package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
)

type resolveOutput struct {
	Input       string                  `json:"input"`
	Result      partnumber.Result       `json:"result"`
	Suggestions []partnumber.Suggestion `json:"suggestions"`
}

func resolveCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "resolve <part-number>...",
		Short: "Check part numbers against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg, slog.Default())
			if err != nil {
				return err
			}
			out := make([]resolveOutput, 0, len(args))
			for _, raw := range args {
				sugg := a.resolver.Suggestions(raw, n)
				if sugg == nil {
					sugg = []partnumber.Suggestion{}
				}
				out = append(out, resolveOutput{Input: raw, Result: a.resolver.Resolve(raw), Suggestions: sugg})
			}
			return writeJSON(cmd.OutOrStdout(), "", out)
		},
	}
	cmd.Flags().IntVarP(&n, "suggestions", "n", 5, "number of catalog suggestions to show")
	return cmd
}
