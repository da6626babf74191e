package engine

import (
	"math"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// PIE / DONUT
// ============================================================================
// Groups by x (y when x is absent) and emits {name, value, percentage}.
// Counts unless the aggregation is sum or mean over a separate y column.
// Percentages are integers over the displayed rows.
// ============================================================================

type slicing struct {
	view     dataset.View
	col      string
	valueCol string
	agg      Aggregation
}

func processPie(r *Result, view dataset.View, cfg *config) {
	rows, _, ok := pieRows(r.Spec, view)
	if !ok {
		return
	}
	r.Rows = rows
	r.CategoryKey = "name"
}

func pieRows(spec ChartSpec, view dataset.View) ([]transform.Row, slicing, bool) {
	col := spec.X
	if col == "" {
		col = spec.Y
	}
	if col == "" || !dataset.HasColumn(view, col) {
		return nil, slicing{}, false
	}

	s := slicing{col: col, valueCol: valueColumn(spec, col), agg: spec.Aggregation}
	if s.agg != AggSum && s.agg != AggMean {
		s.agg = AggCount
	}
	s.view, _ = bucketX(view, spec, col)

	grouped := groupRows(s.view, col, s.valueCol, s.agg)
	grouped = narrow(grouped, spec, col)
	return toSlices(grouped, col), s, true
}

// toSlices renames the label field to name and adds integer percentages.
func toSlices(grouped []transform.Row, labelKey string) []transform.Row {
	var total float64
	for _, g := range grouped {
		total += g.Num("value")
	}

	rows := make([]transform.Row, 0, len(grouped))
	for _, g := range grouped {
		v := g.Num("value")
		pct := 0
		if total > 0 {
			pct = int(math.Round(v / total * 100))
		}
		row := transform.Row{"name": g.Label(labelKey), "value": v, "percentage": pct}
		if c, ok := g["count"]; ok {
			row["count"] = c
		}
		rows = append(rows, row)
	}
	return rows
}
