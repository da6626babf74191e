package transform

import (
	"sort"

	"github.com/barasalah2/chartflow/dataset"
)

// ============================================================================
// GROUPING - SubViews per distinct column value
// ============================================================================
// Groups hold index lists into the parent view (zero-copy) and keep the
// order in which keys were first seen.
// ============================================================================

// UnknownKey labels rows whose grouping cell is null.
const UnknownKey = "Unknown"

// OtherKey labels the merged bucket produced by other_group.
const OtherKey = "Other"

// Group is one distinct value of a column and the rows holding it.
type Group struct {
	Key   string
	First dataset.Value // first cell seen, used for natural ordering
	View  dataset.View
}

// GroupBy partitions view by the key of col. Null cells group under
// UnknownKey.
func GroupBy(view dataset.View, col string) []Group {
	grouped := make(map[string][]int)
	firsts := make(map[string]dataset.Value)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		v := view.Value(i, col)
		key := v.Key()
		if v.IsNull() || key == "" {
			key = UnknownKey
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
			firsts[key] = v
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			First: firsts[key],
			View:  dataset.NewSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// GROUPED AGGREGATES
// ============================================================================

// CountBy emits {col, count, value=count} per distinct value of col.
func CountBy(view dataset.View, col string) []Row {
	groups := GroupBy(view, col)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		n := g.View.Len()
		rows = append(rows, Row{col: g.Key, "count": n, "value": float64(n)})
	}
	return rows
}

// SumBy emits {col, value, sum, count} with the sum of valueCol per group.
func SumBy(view dataset.View, col, valueCol string) []Row {
	groups := GroupBy(view, col)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		total := Total(dataset.Floats(g.View, valueCol))
		rows = append(rows, Row{col: g.Key, "value": total, "sum": total, "count": g.View.Len()})
	}
	return rows
}

// MeanBy emits {col, value, mean, count}. count is the number of numeric
// cells, which is also the denominator.
func MeanBy(view dataset.View, col, valueCol string) []Row {
	groups := GroupBy(view, col)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		vals := dataset.Floats(g.View, valueCol)
		mean := Average(vals)
		rows = append(rows, Row{col: g.Key, "value": mean, "mean": mean, "count": len(vals)})
	}
	return rows
}

// PercentOfTotalBy emits each bucket's share of the row count, in percent
// rounded to 2 decimals.
func PercentOfTotalBy(view dataset.View, col string) []Row {
	rows := CountBy(view, col)
	return withPercentages(rows, "count")
}

func withPercentages(rows []Row, from string) []Row {
	var total float64
	for _, r := range rows {
		total += r.Num(from)
	}
	for _, r := range rows {
		pct := 0.0
		if total > 0 {
			pct = RoundTo2(r.Num(from) / total * 100)
		}
		r["percentage"] = pct
		r["value"] = pct
	}
	return rows
}

// RankBy sorts count buckets by count and tags each with its 1-based rank.
// dir "asc" ranks the smallest bucket first; anything else ranks the
// largest first.
func RankBy(view dataset.View, col, dir string) []Row {
	rows := CountBy(view, col)
	SortByNum(rows, "count", dir != "asc")
	for i, r := range rows {
		r["rank"] = i + 1
	}
	return rows
}

// TopKBy keeps the k largest count buckets, sorted descending.
func TopKBy(view dataset.View, col string, k int) []Row {
	rows := CountBy(view, col)
	SortByNum(rows, "count", true)
	return truncate(rows, k)
}

// BottomKBy keeps the k smallest count buckets, sorted ascending.
func BottomKBy(view dataset.View, col string, k int) []Row {
	rows := CountBy(view, col)
	SortByNum(rows, "count", false)
	return truncate(rows, k)
}

// OtherGroupBy merges count buckets below threshold×total into OtherKey.
func OtherGroupBy(view dataset.View, col string, threshold float64) []Row {
	return mergeSmall(CountBy(view, col), col, "count", threshold)
}

// mergeSmall folds rows whose field is below threshold×total into one
// OtherKey row appended at the end.
func mergeSmall(rows []Row, labelKey, field string, threshold float64) []Row {
	var total float64
	for _, r := range rows {
		total += r.Num(field)
	}
	cutoff := threshold * total

	kept := make([]Row, 0, len(rows))
	var other float64
	merged := 0
	for _, r := range rows {
		if r.Num(field) < cutoff {
			other += r.Num(field)
			merged++
			continue
		}
		kept = append(kept, r)
	}
	if merged == 0 {
		return kept
	}

	row := Row{labelKey: OtherKey, "value": other}
	if field == "count" {
		row["count"] = int(other)
	} else if field != "value" {
		row[field] = other
	}
	return append(kept, row)
}

// AlphabeticalBy emits count buckets sorted lexically by key.
func AlphabeticalBy(view dataset.View, col string) []Row {
	rows := CountBy(view, col)
	SortByLabel(rows, col)
	return rows
}

// FrequencyBy emits count buckets sorted by count descending.
func FrequencyBy(view dataset.View, col string) []Row {
	rows := CountBy(view, col)
	SortByNum(rows, "count", true)
	return rows
}

// DateGroupBy buckets col by granularity and emits {col, count, value} in
// chronological order. value is the sum of valueCol when it names another
// column, else the count. Keys that are not dates follow the dated buckets
// in first-seen order.
func DateGroupBy(view dataset.View, col, valueCol string, g dataset.Granularity) []Row {
	bucketed := dataset.BucketDates(view, col, g)
	sumValues := valueCol != "" && valueCol != col

	groups := GroupBy(bucketed, col)
	SortGroupsChronologically(groups)

	rows := make([]Row, 0, len(groups))
	for _, grp := range groups {
		n := grp.View.Len()
		row := Row{col: grp.Key, "count": n, "value": float64(n)}
		if sumValues {
			total := Total(dataset.Floats(grp.View, valueCol))
			row["value"] = total
			row["sum"] = total
		}
		rows = append(rows, row)
	}
	return rows
}

// SortGroupsChronologically orders groups by their bucket time. Groups whose
// key is not a date keep their relative order after the dated ones.
func SortGroupsChronologically(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		ti, okI := dataset.BucketTime(groups[i].Key)
		tj, okJ := dataset.BucketTime(groups[j].Key)
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

func truncate(rows []Row, k int) []Row {
	if k >= 0 && len(rows) > k {
		return rows[:k]
	}
	return rows
}
