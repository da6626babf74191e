package transform

import (
	"math"
	"sort"
	"strings"

	"github.com/barasalah2/chartflow/dataset"
)

// ============================================================================
// PER-ROW TRANSFORMS
// ============================================================================
// Each numeric row of the source is copied with "value" set to the original
// number and one derived field added. Rows whose column does not coerce are
// dropped.
// ============================================================================

// NormalizeRows adds normalized = (v-min)/(max-min). A constant column
// normalizes to 0.
func NormalizeRows(view dataset.View, col string) []Row {
	vals := dataset.Floats(view, col)
	lo, hi := MinMax(vals)
	return deriveRows(view, col, "normalized", func(v float64) float64 {
		if hi == lo {
			return 0
		}
		return (v - lo) / (hi - lo)
	})
}

// ZScoreRows adds z_score = (v-mean)/std using the population std.
func ZScoreRows(view dataset.View, col string) []Row {
	vals := dataset.Floats(view, col)
	mean := Average(vals)
	std := PopulationStd(vals)
	return deriveRows(view, col, "z_score", func(v float64) float64 {
		if std == 0 {
			return 0
		}
		return (v - mean) / std
	})
}

// LogScaleRows adds log_value = log10(v) for positive values, 0 otherwise.
func LogScaleRows(view dataset.View, col string) []Row {
	return deriveRows(view, col, "log_value", func(v float64) float64 {
		if v <= 0 {
			return 0
		}
		return math.Log10(v)
	})
}

func deriveRows(view dataset.View, col, field string, fn func(float64) float64) []Row {
	rows := make([]Row, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Value(i, col).Float()
		if !ok {
			continue
		}
		row := recordAt(view, i)
		row["value"] = v
		row[field] = fn(v)
		rows = append(rows, row)
	}
	return rows
}

// RollingMeanRows sorts rows by col in natural order (dates, then numbers,
// then text) and adds the mean of valueCol over a centered window of the
// given size, clamped at both ends. Rows without a numeric valueCol are
// dropped before the window is applied.
func RollingMeanRows(view dataset.View, col, valueCol string, window int) []Row {
	if window <= 0 {
		window = 3
	}
	numeric := dataset.Numeric(view, valueCol)

	idx := make([]int, numeric.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return naturalLess(numeric.Value(idx[a], col), numeric.Value(idx[b], col))
	})

	vals := make([]float64, len(idx))
	for i, j := range idx {
		vals[i], _ = numeric.Value(j, valueCol).Float()
	}

	half := (window - 1) / 2
	rows := make([]Row, 0, len(idx))
	for i, j := range idx {
		start := i - half
		end := start + window - 1
		if start < 0 {
			start = 0
		}
		if end > len(vals)-1 {
			end = len(vals) - 1
		}
		mean := Average(vals[start : end+1])

		row := Row{
			col:            numeric.Value(j, col).Any(),
			valueCol:       vals[i],
			"value":        mean,
			"rolling_mean": mean,
		}
		rows = append(rows, row)
	}
	return rows
}

// naturalLess compares two cells: dates by time, numbers numerically,
// everything else case-insensitively. Nulls sort last.
func naturalLess(a, b dataset.Value) bool {
	switch {
	case a.IsNull() != b.IsNull():
		return b.IsNull()
	case a.HasTime && b.HasTime:
		return a.Time.Before(b.Time)
	case a.Kind == dataset.Number && b.Kind == dataset.Number:
		return a.Num < b.Num
	}
	if ta, ok := dataset.ParseDate(a.Raw); ok {
		if tb, ok := dataset.ParseDate(b.Raw); ok {
			return ta.Before(tb)
		}
	}
	if fa, okA := a.Float(); okA {
		if fb, okB := b.Float(); okB {
			return fa < fb
		}
	}
	return strings.ToLower(a.Raw) < strings.ToLower(b.Raw)
}

func recordAt(view dataset.View, i int) Row {
	cols := view.Columns()
	row := make(Row, len(cols)+2)
	for _, c := range cols {
		row[c.Name] = view.Value(i, c.Name).Any()
	}
	return row
}
