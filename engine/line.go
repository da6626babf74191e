package engine

import (
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// LINE / AREA
// ============================================================================
// Single series: date-grouped, aggregated or raw {x, y, value} points.
// Multi series: x grouped with one pivoted field per series value.
// rolling_mean on transform_y smooths y along x in natural order.
// Output is chronological whenever x looks like a date.
// ============================================================================

func processLine(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x := spec.X
	if x == "" || !dataset.HasColumn(view, x) {
		return
	}
	y := valueColumn(spec, x)
	if y != "" && !dataset.HasColumn(view, y) {
		return
	}
	r.CategoryKey = x

	cy := spec.CodeY()
	if cy.Op == transform.RollingMean && y != "" {
		r.Rows = transform.RollingMeanRows(view, x, y, cy.IntParam(3))
		return
	}

	view, bucketed := bucketX(view, spec, x)

	var rows []transform.Row
	switch {
	case spec.Series != "" && dataset.HasColumn(view, spec.Series):
		rows, r.SeriesKeys = pivot(view, x, spec.Series, y, groupingAgg(spec.Aggregation, y))
	case y == "" || bucketed || spec.Aggregation == AggCount || spec.Aggregation == AggSum || spec.Aggregation == AggMean:
		rows = groupRows(view, x, y, groupingAgg(spec.Aggregation, y))
	default:
		rows, r.ValueKey = passThrough(view, x, y, cy)
	}

	rows = narrow(rows, spec, x)
	sortChronological(rows, x)
	r.Rows = rows
}
