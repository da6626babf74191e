package engine

import (
	"math"
	"strings"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// SCATTER / BUBBLE
// ============================================================================

// textAxisMarkers flag field names that hold free text, never coordinates.
var textAxisMarkers = []string{"description", "name", "label"}

func isTextAxis(field string) bool {
	lower := strings.ToLower(field)
	for _, m := range textAxisMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// processScatter emits numeric {x, y, value} pairs, skipping rows where
// either side does not coerce. A non-numeric series column labels each
// point under "series". Bubbles size each point from a numeric series
// column, else from y:
//
//	area = size / max(size) * maxArea
//	radius = sqrt(area / π)
func processScatter(r *Result, view dataset.View, cfg *config) {
	spec := r.Spec
	x, y := spec.X, spec.Y
	if x == "" || y == "" {
		return
	}
	for _, field := range []string{x, y} {
		if isTextAxis(field) {
			r.warnf(cfg, "%s axis %q looks like a text field, no points plotted", r.Kind, field)
			return
		}
	}
	if !dataset.HasColumn(view, x) || !dataset.HasColumn(view, y) {
		return
	}
	r.CategoryKey = x
	r.ValueKey = y

	series := spec.Series
	if series != "" && !dataset.HasColumn(view, series) {
		series = ""
	}
	sizeCol := ""
	if r.Kind == Bubble {
		sizeCol = y
		if series != "" && dataset.KindOf(view, series) == dataset.Number {
			sizeCol = series
			series = ""
		}
	}

	rows := make([]transform.Row, 0, view.Len())
	var maxSize float64
	for i := 0; i < view.Len(); i++ {
		xv, okX := view.Value(i, x).Float()
		yv, okY := view.Value(i, y).Float()
		if !okX || !okY {
			continue
		}
		row := transform.Row{x: xv, y: yv, "value": yv}
		if series != "" {
			row["series"] = labelOf(view.Value(i, series))
		}
		if sizeCol != "" {
			size, _ := view.Value(i, sizeCol).Float()
			row["size"] = size
			maxSize = math.Max(maxSize, size)
		}
		rows = append(rows, row)
	}

	if sizeCol != "" {
		for _, row := range rows {
			area := 0.0
			if size := row.Num("size"); maxSize > 0 && size > 0 {
				area = size / maxSize * cfg.bubbleMaxArea
			}
			row["area"] = transform.RoundTo2(area)
			row["radius"] = transform.RoundTo2(math.Sqrt(area / math.Pi))
		}
	}
	r.Rows = rows
}
