package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/barasalah2/chartflow/helpers"
	"github.com/barasalah2/chartflow/schema"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <file>",
	Short: "Print the discovered column schema of a data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sch, err := helpers.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("auto-detect failed: %w", err)
		}
		w, closeFn, err := output(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		if formatFlag == "text" {
			return writeSchemaText(w, sch)
		}
		return writeJSON(w, sch, formatFlag)
	},
}

func writeSchemaText(w io.Writer, sch *schema.Config) error {
	fmt.Fprintf(w, "%s: %d rows, %d columns\n", sch.Name, sch.RowCount, len(sch.Columns))
	for _, c := range sch.Columns {
		line := fmt.Sprintf("  %-24s %-7s %-10s %d unique", c.Name, c.Kind, c.Role, c.UniqueCount)
		if c.IsTemporal {
			line += " temporal"
		}
		if c.Parent != "" {
			line += " parent=" + c.Parent
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
