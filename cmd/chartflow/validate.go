package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/translator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <specs.json>",
	Short: "Check a custom chart spec file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read specs: %w", err)
		}
		specs, err := translator.ParseCustomSpecs(raw)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, spec := range specs {
			kind, ok := engine.ParseKind(spec.Type)
			note := ""
			if !ok {
				note = " (unknown type, renders as bar)"
			}
			fmt.Fprintf(out, "%d: %s x=%q y=%q%s\n", i, kind, spec.X, spec.Y, note)
		}
		fmt.Fprintf(out, "%d spec(s) OK\n", len(specs))
		return nil
	},
}
