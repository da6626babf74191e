package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barasalah2/chartflow/dashboard"
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/helpers"
	"github.com/barasalah2/chartflow/translator"
)

var (
	renderFile  string
	renderSpecs string
	renderTitle string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render chart specs over a data file",
	Example: `  chartflow render --file tasks.csv --specs charts.json --format html --out charts.html
  chartflow render --file tasks.xlsx --specs charts.json --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(renderSpecs)
		if err != nil {
			return fmt.Errorf("failed to read specs: %w", err)
		}
		specs, err := translator.ParseCustomSpecs(raw)
		if err != nil {
			return err
		}
		return composeAndWrite(cmd, renderFile, renderTitle, specs)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderFile, "file", "", "Data file: .csv, .json or .xlsx (required)")
	renderCmd.Flags().StringVar(&renderSpecs, "specs", "", "JSON array of chart specs (required)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Page title for html output")
	_ = renderCmd.MarkFlagRequired("file")
	_ = renderCmd.MarkFlagRequired("specs")
}

func newBoard() *dashboard.Board {
	engineOpts := []engine.Option{}
	if cfg.Dashboard.StrictKinds {
		engineOpts = append(engineOpts, engine.WithStrictKinds())
	}
	return dashboard.New(
		dashboard.WithLogger(logger),
		dashboard.WithWorkers(cfg.Dashboard.Workers),
		dashboard.WithCacheSize(cfg.Dashboard.CacheSize),
		dashboard.WithEngineOptions(engineOpts...),
	)
}

func composeAndWrite(cmd *cobra.Command, file, title string, specs []engine.ChartSpec) error {
	ds, _, err := helpers.LoadFile(file)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	logger.Debug("loaded data", zap.String("file", file), zap.Int("rows", ds.Len()))

	panels, err := newBoard().Compose(cmd.Context(), ds, specs)
	if err != nil {
		return err
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	return writePanels(w, title, panels, formatFlag)
}
