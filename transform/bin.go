package transform

import (
	"fmt"
	"math"
	"strconv"

	"github.com/barasalah2/chartflow/dataset"
)

// MaxBins caps the bucket count of bin:N and bin:auto.
const MaxBins = 1000

// BinRows buckets the numeric readings of col.
//
//	auto     → ceil(sqrt(n)) uniform bins
//	quartile → 4 buckets bounded by the nearest-rank Q1/Q2/Q3
//	N        → N uniform bins of width (max-min)/N, at most MaxBins
//
// Every numeric value lands in exactly one bin; values equal to max fall in
// the last bin. Empty bins are kept so the bins tile [min,max]. Output rows
// are {bin, bin_start, bin_end, count, value=count}.
func BinRows(view dataset.View, col, param string) []Row {
	vals := dataset.Floats(view, col)
	if len(vals) == 0 {
		return nil
	}
	if param == "quartile" {
		return quartileBins(vals)
	}

	n, err := strconv.Atoi(param)
	if err != nil || n <= 0 {
		n = int(math.Ceil(math.Sqrt(float64(len(vals)))))
	}
	if n > MaxBins {
		n = MaxBins
	}
	return uniformBins(vals, n)
}

func uniformBins(vals []float64, n int) []Row {
	lo, hi := MinMax(vals)
	if hi == lo {
		return []Row{binRow(lo, hi, len(vals))}
	}

	width := (hi - lo) / float64(n)
	counts := make([]int, n)
	for _, v := range vals {
		i := int(math.Floor((v - lo) / width))
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
	}

	rows := make([]Row, n)
	for i, c := range counts {
		start := lo + float64(i)*width
		end := lo + float64(i+1)*width
		if i == n-1 {
			end = hi
		}
		rows[i] = binRow(start, end, c)
	}
	return rows
}

func quartileBins(vals []float64) []Row {
	s := sorted(vals)
	lo, hi := s[0], s[len(s)-1]
	q1 := NearestRank(s, 0.25)
	q2 := NearestRank(s, 0.5)
	q3 := NearestRank(s, 0.75)
	bounds := [][2]float64{{lo, q1}, {q1, q2}, {q2, q3}, {q3, hi}}

	counts := make([]int, 4)
	for _, v := range s {
		switch {
		case v <= q1:
			counts[0]++
		case v <= q2:
			counts[1]++
		case v <= q3:
			counts[2]++
		default:
			counts[3]++
		}
	}

	rows := make([]Row, 4)
	for i, b := range bounds {
		row := binRow(b[0], b[1], counts[i])
		row["bin"] = fmt.Sprintf("Q%d (%s-%s)", i+1, formatEdge(b[0]), formatEdge(b[1]))
		row["quartile"] = i + 1
		rows[i] = row
	}
	return rows
}

func binRow(start, end float64, count int) Row {
	return Row{
		"bin":       formatEdge(start) + "-" + formatEdge(end),
		"bin_start": start,
		"bin_end":   end,
		"count":     count,
		"value":     float64(count),
	}
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(RoundTo2(v), 'f', -1, 64)
}
