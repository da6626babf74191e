package engine

import (
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/layout"
	"github.com/barasalah2/chartflow/transform"
)

// processTreemap sums y (or counts) by x into {name, value} leaves, largest
// first, and lays them out on the configured canvas. Each leaf gets the
// x, y, width and height of its rectangle.
func processTreemap(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	col := spec.X
	if col == "" {
		col = spec.Y
	}
	if col == "" || !dataset.HasColumn(view, col) {
		return
	}
	valueCol := valueColumn(spec, col)
	view, _ = bucketX(view, spec, col)

	grouped := groupRows(view, col, valueCol, groupingAgg(spec.Aggregation, valueCol))
	grouped = narrow(grouped, spec, col)
	transform.SortByValue(grouped, true)

	values := make([]float64, len(grouped))
	for i, g := range grouped {
		values[i] = g.Num("value")
	}
	rects := layout.Squarify(values, cfg.treemapWidth, cfg.treemapHeight, cfg.minCell)

	rows := make([]transform.Row, len(grouped))
	for i, g := range grouped {
		rows[i] = transform.Row{
			"name":   g.Label(col),
			"value":  values[i],
			"x":      transform.RoundTo2(rects[i].X),
			"y":      transform.RoundTo2(rects[i].Y),
			"width":  transform.RoundTo2(rects[i].Width),
			"height": transform.RoundTo2(rects[i].Height),
		}
	}
	r.Rows = rows
	r.CategoryKey = "name"
}
