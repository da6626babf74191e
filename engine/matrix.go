package engine

import (
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// HEATMAP
// ============================================================================
// Co-occurrence mode: sparse {x, y, value} counts of (x, y) value pairs.
// A numeric series column with a sum or mean aggregation fills cells with
// that aggregate instead of the count.
// Correlation mode (correlation_matrix on either transform): Pearson
// correlation of every ordered pair of numeric columns.
// ============================================================================

func processHeatmap(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	r.CategoryKey = "x"
	cx, cy := spec.CodeX(), spec.CodeY()

	if cx.Op == transform.Correlation || cy.Op == transform.Correlation {
		cols := correlationColumns(view, spec)
		if len(cols) < 2 {
			r.warnf(cfg, "correlation needs at least 2 numeric columns, found %d", len(cols))
			return
		}
		r.Rows = transform.CorrelationRows(view, cols)
		return
	}

	x, y := spec.X, spec.Y
	if x == "" || y == "" || !dataset.HasColumn(view, x) || !dataset.HasColumn(view, y) {
		return
	}
	view, _ = bucketX(view, spec, x)
	if g, ok := cy.Granularity(); ok {
		view = dataset.BucketDates(view, y, g)
	}

	valueCol, agg := "", AggCount
	if spec.Series != "" && dataset.HasColumn(view, spec.Series) &&
		(spec.Aggregation == AggSum || spec.Aggregation == AggMean) {
		valueCol, agg = spec.Series, spec.Aggregation
	}

	var rows []transform.Row
	for _, gx := range transform.GroupBy(view, x) {
		for _, gy := range transform.GroupBy(gx.View, y) {
			rows = append(rows, transform.Row{
				"x":     gx.Key,
				"y":     gy.Key,
				"value": cellValue(gy.View, valueCol, agg),
				"count": gy.View.Len(),
			})
		}
	}
	r.Rows = rows
}

// correlationColumns uses x and y when both are numeric plus the remaining
// numeric columns, capped at transform.MaxCorrelationColumns.
func correlationColumns(view dataset.View, spec ChartSpec) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, c := range []string{spec.X, spec.Y} {
		if c != "" && !seen[c] && dataset.KindOf(view, c) == dataset.Number {
			cols = append(cols, c)
			seen[c] = true
		}
	}
	for _, c := range dataset.NumericColumns(view) {
		if !seen[c] {
			cols = append(cols, c)
			seen[c] = true
		}
	}
	if len(cols) > transform.MaxCorrelationColumns {
		cols = cols[:transform.MaxCorrelationColumns]
	}
	return cols
}
