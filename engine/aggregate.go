package engine

import (
	"sort"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// SHARED AGGREGATION HELPERS
// ============================================================================

// groupRows aggregates view by col. sum and mean read valueCol; without a
// value column every aggregation degrades to count.
func groupRows(view dataset.View, col, valueCol string, agg Aggregation) []transform.Row {
	if valueCol == "" {
		return transform.CountBy(view, col)
	}
	switch agg {
	case AggSum:
		return transform.SumBy(view, col, valueCol)
	case AggMean:
		return transform.MeanBy(view, col, valueCol)
	default:
		return transform.CountBy(view, col)
	}
}

// cellValue reduces one group to a number the same way groupRows does.
func cellValue(view dataset.View, valueCol string, agg Aggregation) float64 {
	if valueCol == "" || agg == AggCount {
		return float64(view.Len())
	}
	if agg == AggMean {
		return transform.Average(dataset.Floats(view, valueCol))
	}
	return transform.Total(dataset.Floats(view, valueCol))
}

// groupingAgg picks the aggregation for charts that always group. An unset
// or "none" aggregation sums valueCol when there is one, else counts.
func groupingAgg(agg Aggregation, valueCol string) Aggregation {
	switch {
	case valueCol == "":
		return AggCount
	case agg == AggUnset || agg == AggNone:
		return AggSum
	}
	return agg
}

// valueColumn returns y unless it repeats the grouping column.
func valueColumn(spec ChartSpec, col string) string {
	if spec.Y == col {
		return ""
	}
	return spec.Y
}

// bucketX applies a date_group code on transform_x to the x column.
func bucketX(view dataset.View, spec ChartSpec, col string) (dataset.View, bool) {
	g, ok := spec.CodeX().Granularity()
	if !ok || col == "" {
		return view, false
	}
	return dataset.BucketDates(view, col, g), true
}

// narrow applies the narrowing codes of both transforms, x first.
func narrow(rows []transform.Row, spec ChartSpec, labelKey string) []transform.Row {
	for _, code := range []transform.Code{spec.CodeX(), spec.CodeY()} {
		if code.IsNarrowing() {
			rows = transform.Narrow(rows, code, labelKey)
		}
	}
	return rows
}

// passThrough emits one record per row with a numeric y: {x, y, value}.
// normalize, z_score and log_scale on transform_y add their derived field,
// which is returned as the value key.
func passThrough(view dataset.View, x, y string, code transform.Code) ([]transform.Row, string) {
	switch code.Op {
	case transform.Normalize, transform.ZScore, transform.LogScale:
		rows := transform.Apply(view, code, transform.Params{Column: y})
		return rows, derivedField(code.Op)
	}

	rows := make([]transform.Row, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Value(i, y).Float()
		if !ok {
			continue
		}
		rows = append(rows, transform.Row{x: labelOf(view.Value(i, x)), y: v, "value": v})
	}
	return rows, "value"
}

func derivedField(op transform.Op) string {
	switch op {
	case transform.Normalize:
		return "normalized"
	case transform.ZScore:
		return "z_score"
	case transform.LogScale:
		return "log_value"
	}
	return "value"
}

func labelOf(v dataset.Value) string {
	if v.IsNull() || v.Key() == "" {
		return transform.UnknownKey
	}
	return v.Key()
}

// sortChronological orders rows by their key when the labels look like
// dates. Labels that are not dates keep their order after the dated ones.
func sortChronological(rows []transform.Row, key string) bool {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label(key)
	}
	if !dataset.LooksTemporal(labels) {
		return false
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, okI := dataset.BucketTime(rows[i].Label(key))
		tj, okJ := dataset.BucketTime(rows[j].Label(key))
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})
	return true
}

// pivot groups by x and series jointly: one record per x value with one
// field per series value, zero-filled, plus value = the row total.
// Series values that clash with x or "value" get a "series:" prefix.
func pivot(view dataset.View, x, series, valueCol string, agg Aggregation) ([]transform.Row, []string) {
	seriesKey := func(k string) string {
		if k == x || k == "value" {
			return "series:" + k
		}
		return k
	}

	var keys []string
	for _, g := range transform.GroupBy(view, series) {
		keys = append(keys, seriesKey(g.Key))
	}

	groups := transform.GroupBy(view, x)
	rows := make([]transform.Row, 0, len(groups))
	for _, g := range groups {
		row := transform.Row{x: g.Key}
		for _, k := range keys {
			row[k] = 0.0
		}
		var total float64
		for _, sg := range transform.GroupBy(g.View, series) {
			v := cellValue(sg.View, valueCol, agg)
			row[seriesKey(sg.Key)] = v
			total += v
		}
		row["value"] = total
		rows = append(rows, row)
	}
	return rows, keys
}

// numericColumns lists number columns in declaration order, excluding skip.
func numericColumns(view dataset.View, skip ...string) []string {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	var out []string
	for _, c := range dataset.NumericColumns(view) {
		if !skipped[c] {
			out = append(out, c)
		}
	}
	return out
}
