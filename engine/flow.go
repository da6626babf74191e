package engine

import (
	"math"
	"strconv"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// WATERFALL / FUNNEL
// ============================================================================

// processWaterfall runs a cumulative sum over y in row order (or over the
// aggregated x groups when an aggregation is set) and emits
// {x, y, delta, start, end, cumulative, base, value}. Cells that do not
// coerce contribute 0. base is the lower edge of the floating bar.
func processWaterfall(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x, y := spec.X, spec.Y
	if y == "" || !dataset.HasColumn(view, y) {
		return
	}
	if x != "" && !dataset.HasColumn(view, x) {
		x = ""
	}

	type step struct {
		label string
		delta float64
	}
	var steps []step
	switch {
	case x != "" && x != y && (spec.Aggregation == AggSum || spec.Aggregation == AggMean || spec.Aggregation == AggCount):
		view, _ = bucketX(view, spec, x)
		for _, g := range groupRows(view, x, y, spec.Aggregation) {
			steps = append(steps, step{g.Label(x), g.Num("value")})
		}
	default:
		for i := 0; i < view.Len(); i++ {
			label := "Step " + strconv.Itoa(i+1)
			if x != "" {
				label = labelOf(view.Value(i, x))
			}
			v, _ := view.Value(i, y).Float()
			steps = append(steps, step{label, v})
		}
	}

	var cumulative float64
	rows := make([]transform.Row, 0, len(steps))
	for _, s := range steps {
		start := cumulative
		cumulative += s.delta
		rows = append(rows, transform.Row{
			"x":          s.label,
			"y":          s.delta,
			"delta":      s.delta,
			"start":      start,
			"end":        cumulative,
			"cumulative": cumulative,
			"base":       math.Min(start, cumulative),
			"value":      s.delta,
		})
	}
	r.Rows = rows
	r.CategoryKey = "x"
}

// processFunnel sorts stages by value, largest first. Stages are raw rows
// {x, y, value} unless an aggregation is set or y is absent.
func processFunnel(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x := spec.X
	if x == "" || !dataset.HasColumn(view, x) {
		return
	}
	y := valueColumn(spec, x)
	if y != "" && !dataset.HasColumn(view, y) {
		return
	}
	view, bucketed := bucketX(view, spec, x)

	var rows []transform.Row
	if y == "" || bucketed || (spec.Aggregation != AggUnset && spec.Aggregation != AggNone) {
		rows = groupRows(view, x, y, groupingAgg(spec.Aggregation, y))
	} else {
		rows, _ = passThrough(view, x, y, transform.Code{})
	}
	rows = narrow(rows, spec, x)
	transform.SortByValue(rows, true)

	r.Rows = rows
	r.CategoryKey = x
}
