package transform

import (
	"math"
	"sort"

	"github.com/barasalah2/chartflow/dataset"
)

// ============================================================================
// SINGLE AGGREGATES - one synthetic row over the whole column
// ============================================================================

// Aggregate computes median, min, max or std over the numeric readings of col
// and returns a single row {column, value, <op>}. Columns without any numeric
// cell yield no rows.
func Aggregate(view dataset.View, col string, op Op) []Row {
	vals := dataset.Floats(view, col)
	if len(vals) == 0 {
		return nil
	}

	var v float64
	switch op {
	case Median:
		v = NearestRank(sorted(vals), 0.5)
	case Min:
		v, _ = MinMax(vals)
	case Max:
		_, v = MinMax(vals)
	case Std:
		v = PopulationStd(vals)
	case Sum:
		v = Total(vals)
	case Mean:
		v = Average(vals)
	case Count:
		v = float64(len(vals))
	default:
		return nil
	}

	return []Row{{"column": col, "value": v, string(op): v}}
}

// ============================================================================
// NUMERIC HELPERS
// ============================================================================

// Total sums vals.
func Total(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

// Average returns the arithmetic mean, 0 for no values.
func Average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return Total(vals) / float64(len(vals))
}

// PopulationStd returns the population standard deviation.
func PopulationStd(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := Average(vals)
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

// MinMax returns the smallest and largest value. Both are 0 for no values.
func MinMax(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// NearestRank returns sorted[floor(p·n)], clamped to the last element.
// No interpolation.
func NearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	i := int(math.Floor(p * float64(n)))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return sorted[i]
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sorted(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	sort.Float64s(out)
	return out
}

// StatBy computes median, min, max or std of valueCol within each group of
// col and emits {col, value, <op>, count}. Groups without numeric cells are
// skipped.
func StatBy(view dataset.View, col, valueCol string, op Op) []Row {
	groups := GroupBy(view, col)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		agg := Aggregate(g.View, valueCol, op)
		if len(agg) == 0 {
			continue
		}
		v := agg[0]["value"]
		rows = append(rows, Row{col: g.Key, "value": v, string(op): v, "count": g.View.Len()})
	}
	return rows
}

// FiveNumber is the box-plot summary of a numeric column.
type FiveNumber struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Sorted []float64
}

// Summarize computes min, nearest-rank quartiles and max. ok is false when
// vals is empty.
func Summarize(vals []float64) (FiveNumber, bool) {
	if len(vals) == 0 {
		return FiveNumber{}, false
	}
	s := sorted(vals)
	return FiveNumber{
		Min:    s[0],
		Q1:     NearestRank(s, 0.25),
		Median: NearestRank(s, 0.5),
		Q3:     NearestRank(s, 0.75),
		Max:    s[len(s)-1],
		Sorted: s,
	}, true
}
