package transform

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tasks() *dataset.Dataset {
	cols := []dataset.Column{
		{Name: "status", Kind: dataset.String},
		{Name: "hours", Kind: dataset.Number},
		{Name: "created", Kind: dataset.Date},
	}
	return dataset.FromRecords(cols, []map[string]any{
		{"status": "Done", "hours": 4, "created": "2024-03-02"},
		{"status": "Open", "hours": 2, "created": "2024-01-15"},
		{"status": "Done", "hours": 6, "created": "2024-01-20"},
		{"status": nil, "hours": "n/a", "created": "2023-12-31"},
		{"status": "Review", "hours": 3, "created": "2024-03-09"},
		{"status": "Done", "hours": 1, "created": "someday"},
	})
}

func numbers(col string, vals ...float64) *dataset.Dataset {
	recs := make([]map[string]any, len(vals))
	for i, v := range vals {
		recs[i] = map[string]any{col: v}
	}
	return dataset.FromRecords([]dataset.Column{{Name: col, Kind: dataset.Number}}, recs)
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"count", Code{Op: Count}},
		{"aggregate_sum", Code{Op: Sum}},
		{"aggregate_mean", Code{Op: Mean}},
		{"TopK:5", Code{Op: TopK, Param: "5"}},
		{"bin:quartile", Code{Op: Bin, Param: "quartile"}},
		{"quarter", Code{Op: DateGroup, Param: "quarter"}},
		{"month_year", Code{Op: DateGroup, Param: "month"}},
		{"date_group:year", Code{Op: DateGroup, Param: "year"}},
		{"date_group", Code{Op: DateGroup, Param: "month"}},
		{"correlation", Code{Op: Correlation}},
		{"", Code{}},
		{"sparkle", Code{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCode(tt.in), "ParseCode(%q)", tt.in)
	}

	assert.Equal(t, "topk:5", ParseCode("topk:5").String())
	assert.Equal(t, 10, ParseCode("topk:abc").IntParam(10))
	assert.True(t, ParseCode("other_group").IsNarrowing())
	assert.True(t, ParseCode("sum").IsAggregate())
}

func TestCountBy(t *testing.T) {
	rows := CountBy(tasks(), "status")
	require.Len(t, rows, 4)

	assert.Equal(t, Row{"status": "Done", "count": 3, "value": 3.0}, rows[0])
	assert.Equal(t, UnknownKey, rows[2]["status"])
}

func TestCountSumsToRowCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n := rng.Intn(200) + 1
		recs := make([]map[string]any, n)
		for i := range recs {
			var v any = fmt.Sprintf("k%d", rng.Intn(12))
			if rng.Intn(10) == 0 {
				v = nil
			}
			recs[i] = map[string]any{"key": v}
		}
		ds := dataset.FromRecords([]dataset.Column{{Name: "key", Kind: dataset.String}}, recs)

		total := 0
		for _, r := range CountBy(ds, "key") {
			total += r["count"].(int)
		}
		assert.Equal(t, n, total)
	}
}

func TestSumAndMeanSkipNonNumeric(t *testing.T) {
	sums := SumBy(tasks(), "status", "hours")
	assert.Equal(t, 11.0, sums[0]["sum"])
	assert.Equal(t, 0.0, sums[2]["value"], "null hours add nothing")

	means := MeanBy(tasks(), "status", "hours")
	assert.InDelta(t, 11.0/3, means[0]["mean"].(float64), 1e-9)
	assert.Equal(t, 0, means[2]["count"], "null hours are left out of the denominator")
}

func TestTopKProperty(t *testing.T) {
	ds := tasks()
	for k := 0; k <= 6; k++ {
		rows := TopKBy(ds, "status", k)
		assert.Len(t, rows, min(k, 4))
		for i := 1; i < len(rows); i++ {
			assert.GreaterOrEqual(t, rows[i-1]["count"].(int), rows[i]["count"].(int))
		}
	}

	bottom := BottomKBy(ds, "status", 2)
	require.Len(t, bottom, 2)
	assert.Equal(t, 1, bottom[0]["count"])
}

func TestRankAndPercent(t *testing.T) {
	rows := RankBy(tasks(), "status", "desc")
	assert.Equal(t, "Done", rows[0]["status"])
	assert.Equal(t, 1, rows[0]["rank"])
	assert.Equal(t, 4, rows[3]["rank"])

	pct := PercentOfTotalBy(tasks(), "status")
	assert.Equal(t, 50.0, pct[0]["percentage"])
	assert.Equal(t, 16.67, pct[1]["value"])
}

func TestOtherGroup(t *testing.T) {
	recs := []map[string]any{}
	for i := 0; i < 18; i++ {
		recs = append(recs, map[string]any{"team": "core"})
	}
	recs = append(recs, map[string]any{"team": "ops"}, map[string]any{"team": "docs"})
	ds := dataset.FromRecords([]dataset.Column{{Name: "team", Kind: dataset.String}}, recs)

	rows := OtherGroupBy(ds, "team", 0.1)
	require.Len(t, rows, 2)
	assert.Equal(t, OtherKey, rows[1]["team"])
	assert.Equal(t, 2, rows[1]["count"])
}

func TestSingleAggregates(t *testing.T) {
	ds := numbers("v", 1, 2, 3, 4, 5, 6, 7, 8)

	median := Aggregate(ds, "v", Median)
	require.Len(t, median, 1)
	assert.Equal(t, 5.0, median[0]["median"], "nearest rank at floor(0.5n)")

	assert.Equal(t, 1.0, Aggregate(ds, "v", Min)[0]["value"])
	assert.Equal(t, 8.0, Aggregate(ds, "v", Max)[0]["value"])
	assert.InDelta(t, 2.2913, Aggregate(ds, "v", Std)[0]["std"].(float64), 1e-4)

	assert.Empty(t, Aggregate(tasks(), "status", Median))
}

func TestBinPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		n := rng.Intn(100) + 2
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = rng.Float64()*1000 - 200
		}
		bins := rng.Intn(12) + 1
		rows := BinRows(numbers("v", vals...), "v", fmt.Sprint(bins))
		require.Len(t, rows, bins)

		lo, hi := MinMax(vals)
		width := (hi - lo) / float64(bins)
		total := 0
		for i, r := range rows {
			total += r["count"].(int)
			assert.InDelta(t, lo+float64(i)*width, r["bin_start"].(float64), 1e-9)
			assert.InDelta(t, width, r["bin_end"].(float64)-r["bin_start"].(float64), 1e-9)
			assert.Equal(t, float64(r["count"].(int)), r["value"])
		}
		assert.Equal(t, n, total)
	}
}

func TestBinAutoAndQuartile(t *testing.T) {
	ds := numbers("v", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	auto := BinRows(ds, "v", "auto")
	assert.Len(t, auto, 4, "ceil(sqrt(10))")

	q := BinRows(ds, "v", "quartile")
	require.Len(t, q, 4)
	total := 0
	for _, r := range q {
		total += r["count"].(int)
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, "Q1 (1-3)", q[0]["bin"])

	same := BinRows(numbers("v", 5, 5, 5), "v", "4")
	require.Len(t, same, 1)
	assert.Equal(t, 3, same[0]["count"])
}

func TestBinCountIsCapped(t *testing.T) {
	ds := numbers("v", 1, 2, 3)

	rows := BinRows(ds, "v", "1000000000000")
	require.Len(t, rows, MaxBins)
	total := 0
	for _, r := range rows {
		total += r["count"].(int)
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 3.0, rows[MaxBins-1]["bin_end"])
}

func TestPerRowTransforms(t *testing.T) {
	ds := numbers("v", 10, 20, 30)

	norm := NormalizeRows(ds, "v")
	require.Len(t, norm, 3)
	assert.Equal(t, 0.0, norm[0]["normalized"])
	assert.Equal(t, 0.5, norm[1]["normalized"])
	assert.Equal(t, 20.0, norm[1]["value"])

	z := ZScoreRows(ds, "v")
	assert.InDelta(t, 0, z[1]["z_score"].(float64), 1e-9)
	assert.InDelta(t, -1.2247, z[0]["z_score"].(float64), 1e-4)

	logs := LogScaleRows(numbers("v", 100, 0), "v")
	assert.InDelta(t, 2.0, logs[0]["log_value"].(float64), 1e-12)
	assert.Equal(t, 0.0, logs[1]["log_value"])

	assert.Len(t, NormalizeRows(tasks(), "hours"), 5, "non-numeric rows are dropped")
}

func TestRollingMean(t *testing.T) {
	cols := []dataset.Column{{Name: "day", Kind: dataset.Date}, {Name: "hours", Kind: dataset.Number}}
	ds := dataset.FromRecords(cols, []map[string]any{
		{"day": "2024-01-03", "hours": 6},
		{"day": "2024-01-01", "hours": 2},
		{"day": "2024-01-02", "hours": 4},
		{"day": "2024-01-04", "hours": 8},
	})

	rows := RollingMeanRows(ds, "day", "hours", 3)
	require.Len(t, rows, 4)
	assert.Equal(t, "2024-01-01", rows[0]["day"])
	assert.Equal(t, 3.0, rows[0]["rolling_mean"], "window clamped at the start")
	assert.Equal(t, 4.0, rows[1]["rolling_mean"])
	assert.Equal(t, 6.0, rows[2]["rolling_mean"])
	assert.Equal(t, 7.0, rows[3]["rolling_mean"], "window clamped at the end")
	assert.Equal(t, 8.0, rows[3]["hours"])
}

func TestDateGroupChronological(t *testing.T) {
	rows := DateGroupBy(tasks(), "created", "", dataset.Month)
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r["created"].(string)
	}
	assert.Equal(t, []string{"Dec 2023", "Jan 2024", "Mar 2024", "someday"}, keys)
	assert.Equal(t, 2.0, rows[1]["value"])

	summed := DateGroupBy(tasks(), "created", "hours", dataset.Quarter)
	assert.Equal(t, "2023-Q4", summed[0]["created"])
	assert.Equal(t, 15.0, summed[1]["value"])
}

func TestCorrelation(t *testing.T) {
	cols := []dataset.Column{
		{Name: "a", Kind: dataset.Number},
		{Name: "b", Kind: dataset.Number},
		{Name: "c", Kind: dataset.Number},
		{Name: "flat", Kind: dataset.Number},
	}
	recs := []map[string]any{}
	for i := 1; i <= 6; i++ {
		recs = append(recs, map[string]any{"a": i, "b": 2*i + 1, "c": -i, "flat": 3})
	}
	ds := dataset.FromRecords(cols, recs)

	rows := CorrelationRows(ds, nil)
	require.Len(t, rows, 16)

	get := func(x, y string) float64 {
		for _, r := range rows {
			if r["x"] == x && r["y"] == y {
				return r["value"].(float64)
			}
		}
		t.Fatalf("pair %s/%s missing", x, y)
		return 0
	}
	assert.Equal(t, 1.0, get("a", "a"))
	assert.Equal(t, 1.0, get("a", "b"))
	assert.Equal(t, -1.0, get("a", "c"))
	assert.Equal(t, 0.0, get("a", "flat"))
	assert.Equal(t, get("b", "c"), get("c", "b"))

	// deterministic
	assert.Equal(t, rows, CorrelationRows(ds, nil))
}

func TestApplyDispatch(t *testing.T) {
	ds := tasks()
	assert.Len(t, Apply(ds, ParseCode("count"), Params{Column: "status"}), 4)
	assert.Len(t, Apply(ds, ParseCode("topk:2"), Params{Column: "status"}), 2)
	assert.Len(t, Apply(ds, ParseCode("median"), Params{Column: "hours"}), 1)
	assert.Nil(t, Apply(ds, Code{}, Params{Column: "status"}))

	sums := Apply(ds, ParseCode("aggregate_sum"), Params{Column: "status", Value: "hours"})
	assert.Equal(t, 11.0, sums[0]["value"])
}

func TestNarrow(t *testing.T) {
	base := func() []Row {
		return []Row{
			{"team": "b", "value": 5.0},
			{"team": "a", "value": 90.0},
			{"team": "c", "value": 5.0},
		}
	}

	top := Narrow(base(), ParseCode("topk:1"), "team")
	require.Len(t, top, 1)
	assert.Equal(t, "a", top[0]["team"])

	other := Narrow(base(), ParseCode("other_group:0.1"), "team")
	require.Len(t, other, 2)
	assert.Equal(t, Row{"team": OtherKey, "value": 10.0}, other[1])

	alpha := Narrow(base(), ParseCode("alphabetical"), "team")
	assert.Equal(t, "a", alpha[0]["team"])

	pct := Narrow(base(), ParseCode("percent_of_total"), "team")
	assert.Equal(t, 90.0, pct[1]["percentage"])

	assert.Equal(t, base(), Narrow(base(), ParseCode("count"), "team"))
}

func TestStatByAndSummarize(t *testing.T) {
	rows := StatBy(tasks(), "status", "hours", Max)
	require.Len(t, rows, 3)
	assert.Equal(t, "Done", rows[0]["status"])
	assert.Equal(t, 6.0, rows[0]["value"])
	assert.Equal(t, 6.0, rows[0]["max"])

	s, ok := Summarize([]float64{8, 1, 7, 2, 6, 3, 5, 4})
	require.True(t, ok)
	assert.Equal(t, FiveNumber{Min: 1, Q1: 3, Median: 5, Q3: 7, Max: 8, Sorted: []float64{1, 2, 3, 4, 5, 6, 7, 8}}, s)

	_, ok = Summarize(nil)
	assert.False(t, ok)
}
