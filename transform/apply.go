package transform

import (
	"github.com/barasalah2/chartflow/dataset"
)

// Params names the columns a transform works on.
type Params struct {
	Column  string   // grouping / target column
	Value   string   // numeric column for sum, mean, rolling_mean and date_group; defaults to Column
	Columns []string // correlation_matrix columns; all numeric columns when empty
}

// Apply runs code over view. A zero code returns nil.
func Apply(view dataset.View, code Code, p Params) []Row {
	col := p.Column
	value := p.Value
	if value == "" {
		value = col
	}

	switch code.Op {
	case Count:
		return CountBy(view, col)
	case Sum:
		return SumBy(view, col, value)
	case Mean:
		return MeanBy(view, col, value)
	case Median, Min, Max, Std:
		return Aggregate(view, value, code.Op)
	case PercentOfTotal:
		return PercentOfTotalBy(view, col)
	case Rank:
		return RankBy(view, col, code.Param)
	case TopK:
		return TopKBy(view, col, code.IntParam(10))
	case BottomK:
		return BottomKBy(view, col, code.IntParam(10))
	case OtherGroup:
		return OtherGroupBy(view, col, code.FloatParam(0.05))
	case RollingMean:
		return RollingMeanRows(view, col, value, code.IntParam(3))
	case Bin:
		return BinRows(view, col, code.Param)
	case Normalize:
		return NormalizeRows(view, col)
	case ZScore:
		return ZScoreRows(view, col)
	case LogScale:
		return LogScaleRows(view, col)
	case Alphabetical:
		return AlphabeticalBy(view, col)
	case Frequency:
		return FrequencyBy(view, col)
	case DateGroup:
		g, _ := code.Granularity()
		return DateGroupBy(view, col, p.Value, g)
	case Correlation:
		return CorrelationRows(view, p.Columns)
	}
	return nil
}

// Narrow applies a narrowing code to rows that were already aggregated and
// carry "value". labelKey is the field holding each row's category.
// Non-narrowing codes return rows unchanged.
func Narrow(rows []Row, code Code, labelKey string) []Row {
	switch code.Op {
	case TopK:
		SortByValue(rows, true)
		return truncate(rows, code.IntParam(10))
	case BottomK:
		SortByValue(rows, false)
		return truncate(rows, code.IntParam(10))
	case OtherGroup:
		return mergeSmall(rows, labelKey, "value", code.FloatParam(0.05))
	case Rank:
		SortByValue(rows, code.Param != "asc")
		for i, r := range rows {
			r["rank"] = i + 1
		}
		return rows
	case PercentOfTotal:
		var total float64
		for _, r := range rows {
			total += r.Num("value")
		}
		for _, r := range rows {
			pct := 0.0
			if total > 0 {
				pct = RoundTo2(r.Num("value") / total * 100)
			}
			r["percentage"] = pct
		}
		return rows
	case Alphabetical:
		SortByLabel(rows, labelKey)
		return rows
	case Frequency:
		SortByValue(rows, true)
		return rows
	}
	return rows
}
