package transform

import (
	"math"

	"github.com/barasalah2/chartflow/dataset"
)

// MaxCorrelationColumns caps the matrix size.
const MaxCorrelationColumns = 10

// CorrelationRows computes the Pearson correlation of every ordered pair of
// cols (all numeric columns when cols is empty, at most
// MaxCorrelationColumns). Each pair uses the rows where both cells are
// numeric. Self-correlation is 1; pairs where either side has zero variance
// are 0. Output rows are {x, y, value} rounded to 2 decimals.
func CorrelationRows(view dataset.View, cols []string) []Row {
	if len(cols) == 0 {
		cols = dataset.NumericColumns(view)
	}
	if len(cols) > MaxCorrelationColumns {
		cols = cols[:MaxCorrelationColumns]
	}

	rows := make([]Row, 0, len(cols)*len(cols))
	for _, a := range cols {
		for _, b := range cols {
			r := 1.0
			if a != b {
				r = RoundTo2(Pearson(view, a, b))
			}
			rows = append(rows, Row{"x": a, "y": b, "value": r})
		}
	}
	return rows
}

// Pearson returns the correlation coefficient of columns a and b over rows
// where both are numeric. Fewer than two pairs or zero variance yield 0.
func Pearson(view dataset.View, a, b string) float64 {
	var xs, ys []float64
	for i := 0; i < view.Len(); i++ {
		x, okX := view.Value(i, a).Float()
		y, okY := view.Value(i, b).Float()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0
	}

	mx, my := Average(xs), Average(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}
