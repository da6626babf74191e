package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barasalah2/chartflow/dashboard"
	"github.com/barasalah2/chartflow/render"
)

// ============================================================================
// OUTPUT
// ============================================================================

// output returns the command writer, or --out when set.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any, format string) error {
	var (
		out []byte
		err error
	)
	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writePanels writes composed panels in the requested format.
func writePanels(w io.Writer, title string, panels []dashboard.Panel, format string) error {
	switch format {
	case "html":
		elements := make([]render.Element, 0, len(panels))
		for _, p := range panels {
			if p.OK() {
				elements = append(elements, *p.Element)
			}
		}
		return render.WritePage(w, title, elements)
	case "csv":
		return writePanelsCSV(w, panels)
	case "text":
		return writePanelsText(w, panels)
	default:
		return writeJSON(w, panels, format)
	}
}

// writePanelsCSV writes each panel's table, separated by a blank line.
func writePanelsCSV(w io.Writer, panels []dashboard.Panel) error {
	cw := csv.NewWriter(w)
	for i, p := range panels {
		if i > 0 {
			cw.Write(nil)
		}
		if !p.OK() || p.Table == nil || len(p.Table.Columns) == 0 {
			msg := p.Error
			if msg == "" {
				msg = "No data"
			}
			cw.Write([]string{"Result", msg})
			continue
		}
		header := make([]string, len(p.Table.Columns))
		for j, c := range p.Table.Columns {
			header[j] = c.Label
		}
		cw.Write(header)
		for _, row := range p.Table.Rows {
			cw.Write(row)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePanelsText(w io.Writer, panels []dashboard.Panel) error {
	var lines []string
	for _, p := range panels {
		label := p.Spec.Title
		if label == "" {
			label = p.Spec.Type
		}
		switch {
		case p.Error != "":
			lines = append(lines, fmt.Sprintf("%s: error: %s", label, p.Error))
		case p.Element != nil:
			lines = append(lines, fmt.Sprintf("%s: %s", label, p.Element.Caption))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No result.")
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
