package engine

import (
	"fmt"

	"github.com/barasalah2/chartflow/transform"
	"github.com/dustin/go-humanize"
)

// ============================================================================
// SUMMARY - One-line caption for a processed chart
// ============================================================================
// Shown under panels and printed by the CLI. Works off Result rows only.
// ============================================================================

// Summary describes a result in one sentence.
func Summary(r *Result) string {
	if r.IsEmpty() {
		return "No data available."
	}

	switch r.Kind {
	case Scatter, Bubble:
		return fmt.Sprintf("%s points plotted.", humanize.Comma(int64(len(r.Rows))))
	case Waterfall:
		last := r.Rows[len(r.Rows)-1]
		return fmt.Sprintf("Net change %s across %d steps.", formatNum(last.Num("cumulative")), len(r.Rows))
	case Heatmap:
		return fmt.Sprintf("%d cells.", len(r.Rows))
	case Box, Violin:
		return fmt.Sprintf("%d groups summarized.", len(r.Rows))
	}

	if period, ok := Period(r); ok {
		var total float64
		for _, row := range r.Rows {
			total += row.Num(r.ValueKey)
		}
		return fmt.Sprintf("%s over %s.", formatNum(total), period)
	}

	top := r.Rows[0]
	var total float64
	for _, row := range r.Rows {
		v := row.Num(r.ValueKey)
		total += v
		if v > top.Num(r.ValueKey) {
			top = row
		}
	}
	label := top.Label(r.CategoryKey)
	if label == "" {
		label = "The first row"
	}
	if total <= 0 {
		return fmt.Sprintf("%s leads across %d categories.", label, len(r.Rows))
	}
	share := top.Num(r.ValueKey) / total * 100
	return fmt.Sprintf("%s leads with %s of %s (%.0f%%) across %d categories.",
		label, formatNum(top.Num(r.ValueKey)), formatNum(total), share, len(r.Rows))
}

// Period returns "first to last" when the category labels are dates.
func Period(r *Result) (string, bool) {
	if r.IsEmpty() || r.CategoryKey == "" {
		return "", false
	}
	rows := make([]transform.Row, len(r.Rows))
	copy(rows, r.Rows)
	if !sortChronological(rows, r.CategoryKey) {
		return "", false
	}
	first := rows[0].Label(r.CategoryKey)
	last := rows[len(rows)-1].Label(r.CategoryKey)
	if first == last {
		return first, true
	}
	return first + " to " + last, true
}

func formatNum(v float64) string {
	return humanize.Commaf(transform.RoundTo2(v))
}
