package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barasalah2/chartflow/helpers"
	"github.com/barasalah2/chartflow/translator"
)

var (
	suggestFile    string
	suggestMessage string
	suggestRender  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the visualization service for chart specs",
	Example: `  chartflow suggest --file tasks.csv --message "hours by status"
  GEMINI_API_KEY=... chartflow suggest --file tasks.csv --render --format html --out charts.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, sch, err := helpers.LoadFile(suggestFile)
		if err != nil {
			return fmt.Errorf("failed to load data: %w", err)
		}
		suggester, err := translator.New(cmd.Context(), cfg.Translator(), logger)
		if err != nil {
			return err
		}
		resp, err := suggester.Suggest(cmd.Context(), translator.NewRequest(ds, sch, suggestMessage, ""))
		if err != nil {
			return fmt.Errorf("suggest failed: %w", err)
		}

		if suggestRender {
			return composeAndWrite(cmd, suggestFile, "", resp.Visualizations)
		}
		w, closeFn, err := output(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return writeJSON(w, resp, formatFlag)
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestFile, "file", "", "Data file: .csv, .json or .xlsx (required)")
	suggestCmd.Flags().StringVarP(&suggestMessage, "message", "m", "", "What to visualize")
	suggestCmd.Flags().BoolVar(&suggestRender, "render", false, "Render the suggested specs instead of printing them")
	_ = suggestCmd.MarkFlagRequired("file")
}
