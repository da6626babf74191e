package render

import (
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// TABLE - Processed rows as display strings
// ============================================================================
// Used for the no-JavaScript view of a panel and by the CLI.
// ============================================================================

// Table is a processed chart flattened to strings.
type Table struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column is one table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// BuildTable lists the category column first, then the series or value
// columns. Nested fields (children, values) are left out.
func BuildTable(r *engine.Result) *Table {
	t := &Table{Title: r.Spec.Title, Columns: []Column{}, Rows: [][]string{}}
	if r.IsEmpty() {
		return t
	}

	var keys []string
	if r.CategoryKey != "" {
		keys = append(keys, r.CategoryKey)
		t.Columns = append(t.Columns, Column{Key: r.CategoryKey, Label: Label(r.CategoryKey), Type: "text", Align: "left"})
	}
	for _, k := range valueColumns(r) {
		if k == r.CategoryKey {
			continue
		}
		keys = append(keys, k)
		t.Columns = append(t.Columns, Column{Key: k, Label: Label(k), Type: "number", Align: "right"})
	}

	for _, row := range r.Rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = cell(row, k)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func valueColumns(r *engine.Result) []string {
	if len(r.SeriesKeys) > 0 {
		return append(append([]string{}, r.SeriesKeys...), "value")
	}
	first := r.Rows[0]
	var cols []string
	for _, k := range first.Keys() {
		switch first[k].(type) {
		case float64, int:
			cols = append(cols, k)
		}
	}
	return cols
}

func cell(row transform.Row, key string) string {
	switch v := row[key].(type) {
	case float64:
		return FormatValue(v)
	case int:
		return FormatValue(float64(v))
	}
	return row.Label(key)
}
