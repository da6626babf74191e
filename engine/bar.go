package engine

import (
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// BAR / HORIZONTAL BAR
// ============================================================================
// Aggregates by x when an aggregation is set (or implied by a date group,
// a narrowing code or a missing y), otherwise passes rows through as
// {x, y, value}. Median, min, max and std on transform_y are computed per x.
// ============================================================================

func processBar(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x := spec.X
	if x == "" {
		x = spec.Y
	}
	if x == "" || !dataset.HasColumn(view, x) {
		return
	}
	r.CategoryKey = x

	cx, cy := spec.CodeX(), spec.CodeY()
	if cx.Op == transform.Bin {
		r.Rows = transform.BinRows(view, x, cx.Param)
		r.CategoryKey = "bin"
		return
	}

	view, bucketed := bucketX(view, spec, x)
	y := valueColumn(spec, x)
	if y != "" && !dataset.HasColumn(view, y) {
		return
	}

	var rows []transform.Row
	switch cy.Op {
	case transform.Median, transform.Min, transform.Max, transform.Std:
		if y != "" {
			rows = transform.StatBy(view, x, y, cy.Op)
			break
		}
		fallthrough
	default:
		agg := spec.Aggregation
		if agg == AggUnset && (y == "" || bucketed || cx.IsNarrowing() || cy.IsNarrowing()) {
			agg = groupingAgg(agg, y)
		}
		if agg == AggUnset || agg == AggNone {
			if y == "" {
				rows = transform.CountBy(view, x)
			} else {
				rows, r.ValueKey = passThrough(view, x, y, cy)
			}
		} else {
			rows = groupRows(view, x, y, agg)
		}
	}

	if bucketed {
		sortChronological(rows, x)
	}
	r.Rows = narrow(rows, spec, x)
}

// ============================================================================
// STACKED / GROUPED BAR
// ============================================================================

func processStackedBar(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	if spec.Series == "" || !dataset.HasColumn(view, spec.Series) {
		if spec.Series != "" {
			r.warnf(cfg, "series column %q not found, drawing a plain bar chart", spec.Series)
		}
		processBar(r, view, cfg)
		return
	}
	x := spec.X
	if x == "" || !dataset.HasColumn(view, x) {
		return
	}

	view, bucketed := bucketX(view, spec, x)
	y := valueColumn(spec, x)
	rows, keys := pivot(view, x, spec.Series, y, groupingAgg(spec.Aggregation, y))
	if bucketed {
		sortChronological(rows, x)
	}

	r.CategoryKey = x
	r.SeriesKeys = keys
	r.Rows = narrow(rows, spec, x)
}
