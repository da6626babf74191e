package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func workPackages() *dataset.Dataset {
	cols := []dataset.Column{
		{Name: "subject", Kind: dataset.String},
		{Name: "status", Kind: dataset.String},
		{Name: "team", Kind: dataset.String},
		{Name: "hours", Kind: dataset.Number},
		{Name: "cost", Kind: dataset.Number},
		{Name: "points", Kind: dataset.Number},
		{Name: "created", Kind: dataset.Date},
	}
	return dataset.FromRecords(cols, []map[string]any{
		{"subject": "Design", "status": "Done", "team": "A", "hours": 8.0, "cost": 800.0, "points": 3.0, "created": "2024-03-05"},
		{"subject": "Build", "status": "Open", "team": "A", "hours": 4.0, "cost": 400.0, "points": 5.0, "created": "2024-01-10"},
		{"subject": "Test", "status": "Done", "team": "B", "hours": 2.0, "cost": 200.0, "points": 2.0, "created": "2024-02-01"},
		{"subject": "Ship", "status": "Blocked", "team": "B", "hours": "n/a", "cost": 100.0, "points": 1.0, "created": "2024-01-20"},
	})
}

func labels(rows []transform.Row, key string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label(key)
	}
	return out
}

func process(t *testing.T, spec ChartSpec, view dataset.View, opts ...Option) *Result {
	t.Helper()
	r, err := Process(spec, view, opts...)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func TestPieEndToEnd(t *testing.T) {
	ds := dataset.FromRecords(
		[]dataset.Column{{Name: "status", Kind: dataset.String}},
		[]map[string]any{{"status": "Done"}, {"status": "Done"}, {"status": "Open"}},
	)

	r := process(t, ChartSpec{Type: "pie", X: "status", TransformY: "count"}, ds)

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "name", r.CategoryKey)
	assert.Equal(t, "Done", r.Rows[0]["name"])
	assert.Equal(t, 2.0, r.Rows[0]["value"])
	assert.Equal(t, 67, r.Rows[0]["percentage"])
	assert.Equal(t, "Open", r.Rows[1]["name"])
	assert.Equal(t, 1.0, r.Rows[1]["value"])
	assert.Equal(t, 33, r.Rows[1]["percentage"])

	assert.Equal(t, "Done leads with 2 of 3 (67%) across 2 categories.", Summary(r))
}

func TestPieSumAndNarrowing(t *testing.T) {
	r := process(t, ChartSpec{Type: "donut", X: "team", Y: "cost", Aggregation: "sum", TransformX: "topk:1"}, workPackages())

	require.Len(t, r.Rows, 1)
	assert.Equal(t, "A", r.Rows[0]["name"])
	assert.Equal(t, 1200.0, r.Rows[0]["value"])
	assert.Equal(t, 100, r.Rows[0]["percentage"])
}

func TestPieFilters(t *testing.T) {
	spec := ChartSpec{Type: "pie", X: "team", Filters: dataset.Filters{"status": {"done"}}}
	r := process(t, spec, workPackages())

	require.Len(t, r.Rows, 2)
	for _, row := range r.Rows {
		assert.Equal(t, 50, row["percentage"])
	}
}

func TestNormalizeChartSpec(t *testing.T) {
	tests := []struct {
		in       ChartSpec
		wantType string
		wantAgg  Aggregation
	}{
		{ChartSpec{Type: "Doughnut chart"}, "donut", AggUnset},
		{ChartSpec{Type: "horizontalBar", TransformY: "aggregate_sum"}, "horizontal_bar", AggSum},
		{ChartSpec{Type: "stacked-bar", TransformX: "count"}, "stacked_bar", AggCount},
		{ChartSpec{Type: "box plot", TransformY: "avg"}, "box", AggMean},
		{ChartSpec{Type: "bar", Aggregation: "NONE", TransformY: "sum"}, "bar", AggNone},
		{ChartSpec{Type: "gantt"}, "gantt", AggUnset},
		// the title never implies an aggregation
		{ChartSpec{Type: "bar", Title: "Count of work packages"}, "bar", AggUnset},
	}
	for _, tt := range tests {
		got := NormalizeChartSpec(tt.in)
		assert.Equal(t, tt.wantType, got.Type, "type for %+v", tt.in)
		assert.Equal(t, tt.wantAgg, got.Aggregation, "aggregation for %+v", tt.in)
	}
}

func TestBarPassThroughIgnoresTitle(t *testing.T) {
	spec := ChartSpec{Type: "bar", X: "subject", Y: "hours", Title: "Count of hours"}
	r := process(t, spec, workPackages())

	// one record per row with numeric hours, not grouped counts
	require.Len(t, r.Rows, 3)
	assert.Equal(t, []string{"Design", "Build", "Test"}, labels(r.Rows, "subject"))
	assert.Equal(t, 8.0, r.Rows[0]["hours"])
	assert.Equal(t, 8.0, r.Rows[0]["value"])
}

func TestBarAggregations(t *testing.T) {
	ds := workPackages()

	count := process(t, ChartSpec{Type: "bar", X: "status"}, ds)
	assert.Equal(t, []string{"Done", "Open", "Blocked"}, labels(count.Rows, "status"))
	assert.Equal(t, 2, count.Rows[0]["count"])

	mean := process(t, ChartSpec{Type: "bar", X: "team", Y: "hours", TransformY: "mean"}, ds)
	require.Len(t, mean.Rows, 2)
	assert.Equal(t, 6.0, mean.Rows[0]["value"])
	// the non-numeric cell is excluded from the denominator
	assert.Equal(t, 2.0, mean.Rows[1]["value"])

	median := process(t, ChartSpec{Type: "bar", X: "team", Y: "cost", TransformY: "median"}, ds)
	require.Len(t, median.Rows, 2)
	assert.Equal(t, 800.0, median.Rows[0]["value"])

	top := process(t, ChartSpec{Type: "bar", X: "team", Y: "cost", Aggregation: AggSum, TransformY: "bottomk:1"}, ds)
	require.Len(t, top.Rows, 1)
	assert.Equal(t, "B", top.Rows[0]["team"])
	assert.Equal(t, 300.0, top.Rows[0]["value"])
}

func TestBarDerivedValues(t *testing.T) {
	r := process(t, ChartSpec{Type: "bar", X: "subject", Y: "cost", TransformY: "normalize"}, workPackages())

	assert.Equal(t, "normalized", r.ValueKey)
	require.Len(t, r.Rows, 4)
	assert.Equal(t, 1.0, r.Rows[0]["normalized"])
	assert.Equal(t, 0.0, r.Rows[3]["normalized"])
}

func TestStackedBarZeroFill(t *testing.T) {
	r := process(t, ChartSpec{Type: "stacked_bar", X: "team", Series: "status"}, workPackages())

	assert.Equal(t, []string{"Done", "Open", "Blocked"}, r.SeriesKeys)
	require.Len(t, r.Rows, 2)
	a, b := r.Rows[0], r.Rows[1]
	assert.Equal(t, "A", a["team"])
	assert.Equal(t, 1.0, a["Done"])
	assert.Equal(t, 1.0, a["Open"])
	assert.Equal(t, 0.0, a["Blocked"])
	assert.Equal(t, 2.0, a["value"])
	assert.Equal(t, 0.0, b["Open"])
	assert.Equal(t, 1.0, b["Blocked"])
}

func TestStackedBarSeriesNamedLikeFields(t *testing.T) {
	ds := dataset.FromRecords(
		[]dataset.Column{{Name: "team", Kind: dataset.String}, {Name: "kind", Kind: dataset.String}},
		[]map[string]any{
			{"team": "A", "kind": "team"},
			{"team": "A", "kind": "value"},
			{"team": "B", "kind": "value"},
			{"team": "B", "kind": "value"},
		},
	)

	r := process(t, ChartSpec{Type: "stacked_bar", X: "team", Series: "kind"}, ds)

	assert.Equal(t, []string{"series:team", "series:value"}, r.SeriesKeys)
	require.Len(t, r.Rows, 2)
	a, b := r.Rows[0], r.Rows[1]
	assert.Equal(t, "A", a["team"])
	assert.Equal(t, 1.0, a["series:team"])
	assert.Equal(t, 1.0, a["series:value"])
	assert.Equal(t, 2.0, a["value"])
	assert.Equal(t, "B", b["team"])
	assert.Equal(t, 0.0, b["series:team"])
	assert.Equal(t, 2.0, b["series:value"])
	assert.Equal(t, 2.0, b["value"])
}

func TestStackedBarWithoutSeriesFallsBack(t *testing.T) {
	r := process(t, ChartSpec{Type: "grouped_bar", X: "team", Series: "missing"}, workPackages())
	assert.Len(t, r.Rows, 2)
	assert.Empty(t, r.SeriesKeys)
	assert.Len(t, r.Warnings, 1)
}

func TestLineChronological(t *testing.T) {
	ds := workPackages()

	raw := process(t, ChartSpec{Type: "line", X: "created", Y: "cost"}, ds)
	assert.Equal(t, []string{"2024-01-10", "2024-01-20", "2024-02-01", "2024-03-05"}, labels(raw.Rows, "created"))

	monthly := process(t, ChartSpec{Type: "area", X: "created", Y: "cost", TransformX: "month"}, ds)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, labels(monthly.Rows, "created"))
	assert.Equal(t, 500.0, monthly.Rows[0]["value"])

	period, ok := Period(monthly)
	assert.True(t, ok)
	assert.Equal(t, "Jan 2024 to Mar 2024", period)
}

func TestLineMultiSeriesAndRollingMean(t *testing.T) {
	ds := workPackages()

	multi := process(t, ChartSpec{Type: "line", X: "created", Series: "team", Y: "cost", TransformX: "quarter"}, ds)
	assert.Equal(t, []string{"A", "B"}, multi.SeriesKeys)
	require.Len(t, multi.Rows, 1)
	assert.Equal(t, "2024-Q1", multi.Rows[0]["created"])
	assert.Equal(t, 1200.0, multi.Rows[0]["A"])
	assert.Equal(t, 300.0, multi.Rows[0]["B"])

	rolling := process(t, ChartSpec{Type: "line", X: "points", Y: "cost", TransformY: "rolling_mean:3"}, ds)
	require.Len(t, rolling.Rows, 4)
	// sorted by points: 1,2,3,5 → cost 100,200,800,400
	assert.Equal(t, 150.0, rolling.Rows[0]["rolling_mean"])
	assert.Equal(t, 600.0, rolling.Rows[3]["rolling_mean"])
}

func TestScatterRejectsTextAxes(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	for _, field := range []string{"description", "task_name", "Label"} {
		r := process(t, ChartSpec{Type: "scatter", X: field, Y: "hours"}, workPackages(), WithLogger(logger))
		assert.Empty(t, r.Rows, field)
		assert.Len(t, r.Warnings, 1, field)
	}
	assert.Equal(t, 3, logs.Len())
}

func TestScatterPoints(t *testing.T) {
	r := process(t, ChartSpec{Type: "scatter", X: "hours", Y: "cost", Series: "team"}, workPackages())

	// "n/a" hours does not coerce
	require.Len(t, r.Rows, 3)
	assert.Equal(t, 8.0, r.Rows[0]["hours"])
	assert.Equal(t, 800.0, r.Rows[0]["cost"])
	assert.Equal(t, "A", r.Rows[0]["series"])
}

func TestBubbleRadius(t *testing.T) {
	r := process(t, ChartSpec{Type: "bubble", X: "points", Y: "cost", Series: "hours"}, workPackages(), WithBubbleMaxArea(2000))

	require.Len(t, r.Rows, 4)
	largest := r.Rows[0]
	assert.Equal(t, 2000.0, largest["area"])
	assert.InDelta(t, math.Sqrt(2000/math.Pi), largest.Num("radius"), 0.01)
	assert.Equal(t, 1000.0, r.Rows[1]["area"])
}

func TestHistogram(t *testing.T) {
	r := process(t, ChartSpec{Type: "histogram", X: "cost", TransformX: "bin:2"}, workPackages())

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "bin", r.CategoryKey)
	total := 0
	for _, row := range r.Rows {
		total += row["count"].(int)
		assert.Contains(t, row, "value")
	}
	assert.Equal(t, 4, total)

	huge := process(t, ChartSpec{Type: "histogram", X: "cost", TransformX: "bin:1000000000000"}, workPackages())
	assert.Len(t, huge.Rows, transform.MaxBins)

	text := process(t, ChartSpec{Type: "histogram", X: "status"}, workPackages())
	assert.Equal(t, "status", text.CategoryKey)
	assert.Len(t, text.Rows, 3)
}

func TestBoxMedianNearestRank(t *testing.T) {
	records := make([]map[string]any, 0, 8)
	for i := 1; i <= 8; i++ {
		records = append(records, map[string]any{"group": "g", "v": float64(i)})
	}
	ds := dataset.FromRecords([]dataset.Column{{Name: "group", Kind: dataset.String}, {Name: "v", Kind: dataset.Number}}, records)

	box := process(t, ChartSpec{Type: "box", X: "group", Y: "v"}, ds)
	require.Len(t, box.Rows, 1)
	row := box.Rows[0]
	assert.Equal(t, 5.0, row["median"])
	assert.Equal(t, 3.0, row["q1"])
	assert.Equal(t, 7.0, row["q3"])
	assert.Equal(t, 1.0, row["min"])
	assert.Equal(t, 8.0, row["max"])
	assert.NotContains(t, row, "values")

	violin := process(t, ChartSpec{Type: "violin", Y: "v"}, ds)
	require.Len(t, violin.Rows, 1)
	assert.Equal(t, "v", violin.Rows[0]["name"])
	assert.Len(t, violin.Rows[0]["values"], 8)
}

func TestHeatmap(t *testing.T) {
	ds := workPackages()

	co := process(t, ChartSpec{Type: "heatmap", X: "team", Y: "status"}, ds)
	require.Len(t, co.Rows, 4)
	assert.Equal(t, transform.Row{"x": "A", "y": "Done", "value": 1.0, "count": 1}, co.Rows[0])

	corr := process(t, ChartSpec{Type: "heatmap", X: "hours", Y: "cost", TransformX: "correlation_matrix"}, ds)
	require.NotEmpty(t, corr.Rows)
	assert.Equal(t, "hours", corr.Rows[0]["x"])
	assert.Equal(t, 1.0, corr.Rows[0]["value"])
	// hours and cost are proportional where both are numeric
	assert.Equal(t, 1.0, corr.Rows[1]["value"])
}

func TestTreemapLayout(t *testing.T) {
	r := process(t, ChartSpec{Type: "treemap", X: "team", Y: "cost"}, workPackages(), WithTreemapSize(400, 300))

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "A", r.Rows[0]["name"])
	var area float64
	for _, row := range r.Rows {
		area += row.Num("width") * row.Num("height")
	}
	assert.InDelta(t, 400*300, area, 1)
	assert.InDelta(t, 1200.0/1500.0, r.Rows[0].Num("width")*r.Rows[0].Num("height")/(400*300), 0.01)
}

func TestWaterfallCumulative(t *testing.T) {
	r := process(t, ChartSpec{Type: "waterfall", X: "subject", Y: "hours"}, workPackages())

	require.Len(t, r.Rows, 4)
	last := r.Rows[len(r.Rows)-1]
	assert.Equal(t, 14.0, last["cumulative"])
	assert.Equal(t, 14.0, last["start"])

	second := r.Rows[1]
	assert.Equal(t, 8.0, second["start"])
	assert.Equal(t, 12.0, second["end"])
	assert.Equal(t, 8.0, second["base"])
	assert.Equal(t, "Net change 14 across 4 steps.", Summary(r))
}

func TestFunnelSortedDescending(t *testing.T) {
	r := process(t, ChartSpec{Type: "funnel", X: "subject", Y: "cost"}, workPackages())
	assert.Equal(t, []string{"Design", "Build", "Test", "Ship"}, labels(r.Rows, "subject"))

	counts := process(t, ChartSpec{Type: "funnel", X: "status"}, workPackages())
	assert.Equal(t, "Done", counts.Rows[0]["status"])
}

func TestRadar(t *testing.T) {
	r := process(t, ChartSpec{Type: "radar", X: "team", Y: "points"}, workPackages())

	assert.Equal(t, Radar, r.Kind)
	assert.Equal(t, []string{"points", "hours", "cost"}, r.SeriesKeys)
	require.Len(t, r.Indicators, 3)
	assert.Equal(t, Indicator{Name: "cost", Max: 600}, r.Indicators[2])
	require.Len(t, r.Rows, 2)
	assert.Equal(t, 4.0, r.Rows[0]["points"])

	thin := dataset.FromRecords(
		[]dataset.Column{{Name: "team", Kind: dataset.String}, {Name: "hours", Kind: dataset.Number}},
		[]map[string]any{{"team": "A", "hours": 1.0}, {"team": "B", "hours": 2.0}},
	)
	fallback := process(t, ChartSpec{Type: "radar", X: "team"}, thin)
	assert.Equal(t, Pie, fallback.Kind)
	assert.Len(t, fallback.Rows, 2)
	assert.NotEmpty(t, fallback.Warnings)
}

func TestSunburstChildren(t *testing.T) {
	r := process(t, ChartSpec{Type: "sunburst", X: "team", Series: "status"}, workPackages())

	require.Len(t, r.Rows, 2)
	kids, ok := r.Rows[0]["children"].([]transform.Row)
	require.True(t, ok)
	assert.Equal(t, []string{"Done", "Open"}, labels(kids, "name"))
}

func TestUnknownKind(t *testing.T) {
	r := process(t, ChartSpec{Type: "gantt", X: "status"}, workPackages())
	assert.Equal(t, Kind("gantt"), r.Kind)
	assert.Len(t, r.Rows, 3)

	_, err := Process(ChartSpec{Type: "gantt", X: "status"}, workPackages(), WithStrictKinds())
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestMissingFieldsYieldEmpty(t *testing.T) {
	ds := workPackages()
	for _, kind := range Kinds {
		r := process(t, ChartSpec{Type: string(kind), X: "nope", Y: "nada", Series: "none"}, ds)
		assert.Empty(t, r.Rows, kind)

		r = process(t, ChartSpec{Type: string(kind)}, ds)
		assert.Empty(t, r.Rows, kind)
	}

	empty := process(t, ChartSpec{Type: "pie", X: "status"}, nil)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "No data available.", Summary(empty))
}
