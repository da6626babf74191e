package engine

import (
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// RADAR / SUNBURST
// ============================================================================

// minRadarAxes is the number of numeric columns a radar needs.
const minRadarAxes = 3

// processRadar emits one record per x value holding every numeric column
// (the mean when a value repeats) and one indicator per column. With fewer
// than three numeric columns the chart degrades to a pie.
func processRadar(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x := spec.X
	axes := radarAxes(view, spec)
	if x == "" || !dataset.HasColumn(view, x) || len(axes) < minRadarAxes {
		r.warnf(cfg, "radar needs a category and %d numeric columns, found %d; drawing a pie", minRadarAxes, len(axes))
		r.Kind = Pie
		processPie(r, view, cfg)
		return
	}

	groups := transform.GroupBy(view, x)
	rows := make([]transform.Row, 0, len(groups))
	peaks := make([]float64, len(axes))
	for _, g := range groups {
		row := transform.Row{x: g.Key}
		for i, col := range axes {
			v := transform.RoundTo2(transform.Average(dataset.Floats(g.View, col)))
			row[col] = v
			if v > peaks[i] {
				peaks[i] = v
			}
		}
		row["value"] = row[axes[0]]
		rows = append(rows, row)
	}

	r.Indicators = make([]Indicator, len(axes))
	for i, col := range axes {
		peak := peaks[i]
		if peak <= 0 {
			peak = 1
		}
		r.Indicators[i] = Indicator{Name: col, Max: peak}
	}
	r.Rows = rows
	r.CategoryKey = x
	r.SeriesKeys = axes
}

// radarAxes lists numeric columns other than x, y first when it is numeric.
func radarAxes(view dataset.View, spec ChartSpec) []string {
	axes := numericColumns(view, spec.X)
	if spec.Y == "" || dataset.KindOf(view, spec.Y) != dataset.Number {
		return capAxes(axes)
	}
	ordered := []string{spec.Y}
	for _, c := range axes {
		if c != spec.Y {
			ordered = append(ordered, c)
		}
	}
	return capAxes(ordered)
}

func capAxes(axes []string) []string {
	if len(axes) > transform.MaxCorrelationColumns {
		return axes[:transform.MaxCorrelationColumns]
	}
	return axes
}

// processSunburst aggregates like a pie. With a series column each slice
// carries children: the same aggregation of its rows grouped by series.
func processSunburst(r *Result, view dataset.View, cfg *config) {
	rows, s, ok := pieRows(r.Spec, view)
	if !ok {
		return
	}
	r.Rows = rows
	r.CategoryKey = "name"

	series := r.Spec.Series
	if series == "" || series == s.col || !dataset.HasColumn(view, series) {
		return
	}

	children := make(map[string][]transform.Row)
	for _, g := range transform.GroupBy(s.view, s.col) {
		var kids []transform.Row
		for _, c := range groupRows(g.View, series, s.valueCol, s.agg) {
			kids = append(kids, transform.Row{"name": c.Label(series), "value": c.Num("value")})
		}
		children[g.Key] = kids
	}
	for _, row := range rows {
		if kids, ok := children[row.Label("name")]; ok {
			row["children"] = kids
		}
	}
}
