package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barasalah2/chartflow/config"
	"github.com/barasalah2/chartflow/logging"
	"github.com/barasalah2/chartflow/store"
)

// ============================================================================
// CHARTFLOW CLI - Charts from tabular data and chart specs
// ============================================================================

const version = "0.3.0"

var (
	configPath string
	dbPath     string
	formatFlag string
	outFile    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "chartflow",
	Short:         "Charts from tabular data and declarative chart specs",
	Long:          "chartflow turns rows plus chart specs into rendered charts, asks an AI visualization service for specs, and keeps conversations and saved charts in SQLite.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Storage.DatabasePath = dbPath
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "chartflow.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CHARTFLOW_DB or storage.database_path)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json, pretty, text, csv, html")
	rootCmd.PersistentFlags().StringVarP(&outFile, "out", "o", "", "Write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(serveCmd, renderCmd, suggestCmd, discoverCmd, validateCmd, conversationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the SQLite store, wrapped with the Postgres mirror when
// one is configured. A mirror that cannot connect is logged and skipped.
func openStore(cmd *cobra.Command) (store.Store, error) {
	primary, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.Storage.MirrorDSN == "" {
		return primary, nil
	}
	mirror, err := store.NewPostgresMirror(cmd.Context(), cfg.Storage.MirrorDSN)
	if err != nil {
		logger.Warn("mirror unavailable, continuing without it", zap.Error(err))
		return primary, nil
	}
	return store.NewMirrored(primary, mirror, logger), nil
}
