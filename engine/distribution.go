package engine

import (
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// HISTOGRAM
// ============================================================================

// processHistogram bins whichever axis carries a bin code, defaulting to
// bin:auto on x (y when x is absent). A column without numeric cells falls
// back to counts per value, so rows always carry count and value.
func processHistogram(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	cx, cy := spec.CodeX(), spec.CodeY()

	col, param := spec.X, "auto"
	switch {
	case cx.Op == transform.Bin && spec.X != "":
		param = cx.Param
	case cy.Op == transform.Bin && spec.Y != "":
		col, param = spec.Y, cy.Param
	case spec.X == "":
		col = spec.Y
	}
	if col == "" || !dataset.HasColumn(view, col) {
		return
	}

	if rows := transform.BinRows(view, col, param); len(rows) > 0 {
		r.Rows = rows
		r.CategoryKey = "bin"
		return
	}
	r.warnf(cfg, "column %q has no numeric values, counting values instead", col)
	r.Rows = transform.CountBy(view, col)
	r.CategoryKey = col
}

// ============================================================================
// BOX / VIOLIN
// ============================================================================

// processBox groups numeric y by x and emits the five-number summary per
// group with value = median. Violins also carry the sorted values.
// Without x the whole column is one group named after it.
func processBox(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x, y := spec.X, spec.Y
	if y == "" || y == x {
		x, y = "", x
	}
	if y == "" || !dataset.HasColumn(view, y) {
		return
	}

	var groups []transform.Group
	catKey := "name"
	if x != "" && dataset.HasColumn(view, x) {
		view, _ = bucketX(view, spec, x)
		groups = transform.GroupBy(view, x)
		catKey = x
	} else {
		groups = []transform.Group{{Key: y, View: view}}
	}
	r.CategoryKey = catKey

	rows := make([]transform.Row, 0, len(groups))
	for _, g := range groups {
		vals := dataset.Floats(g.View, y)
		s, ok := transform.Summarize(vals)
		if !ok {
			continue
		}
		row := transform.Row{
			catKey:   g.Key,
			"min":    s.Min,
			"q1":     s.Q1,
			"median": s.Median,
			"q3":     s.Q3,
			"max":    s.Max,
			"count":  len(vals),
			"value":  s.Median,
		}
		if r.Kind == Violin {
			row["values"] = s.Sorted
		}
		rows = append(rows, row)
	}
	if x != "" {
		sortChronological(rows, catKey)
	}
	r.Rows = rows
}
