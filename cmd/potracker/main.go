package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/po-tracker/internal/common"
)

var (
	cfgFile string
	v       = common.NewViper()
	cfg     *common.Config
	rootCmd = &cobra.Command{
		Use:   "potracker",
		Short: "Purchase-order field extraction and validation",
		Long: `potracker reads OCR'd purchase orders (text, PDF or scanned images),
extracts the fields needed for order tracking, validates part numbers against
the reference catalog and classifies quality clauses.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "part number catalog (xlsx, csv or tsv)")
	rootCmd.PersistentFlags().String("rules", "", "quality clause rule table (yaml) overriding the built-in one")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	bindFlag(v, "catalog.path", "catalog")
	bindFlag(v, "rules.path", "rules")
	bindFlag(v, "log.level", "log-level")
	bindFlag(v, "log.format", "log-format")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
}

// bindFlag binds a persistent flag to a config key. Unset flags fall through
// to the environment and the config file.
func bindFlag(v *viper.Viper, key, flag string) {
	_ = v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = common.LoadConfig(v, cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg.Log))
	return nil
}

func newLogger(lc common.LogConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	// stdout carries command output; logs go to stderr
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
