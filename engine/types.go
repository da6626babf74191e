package engine

import (
	"strings"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// ENGINE TYPES - Chart specs in, renderer-ready records out
// ============================================================================

// Kind is a chart type.
type Kind string

const (
	Pie           Kind = "pie"
	Donut         Kind = "donut"
	Bar           Kind = "bar"
	HorizontalBar Kind = "horizontal_bar"
	StackedBar    Kind = "stacked_bar"
	GroupedBar    Kind = "grouped_bar"
	Line          Kind = "line"
	Area          Kind = "area"
	Scatter       Kind = "scatter"
	Bubble        Kind = "bubble"
	Histogram     Kind = "histogram"
	Box           Kind = "box"
	Violin        Kind = "violin"
	Heatmap       Kind = "heatmap"
	Treemap       Kind = "treemap"
	Waterfall     Kind = "waterfall"
	Funnel        Kind = "funnel"
	Radar         Kind = "radar"
	Sunburst      Kind = "sunburst"
)

// Kinds lists every supported chart type.
var Kinds = []Kind{
	Pie, Donut, Bar, HorizontalBar, StackedBar, GroupedBar, Line, Area,
	Scatter, Bubble, Histogram, Box, Violin, Heatmap, Treemap, Waterfall,
	Funnel, Radar, Sunburst,
}

// Valid reports whether k is a supported chart type.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Aggregation is the explicit grouping instruction on a ChartSpec.
// It is never inferred from the title.
type Aggregation string

const (
	AggUnset Aggregation = ""
	AggNone  Aggregation = "none"
	AggCount Aggregation = "count"
	AggSum   Aggregation = "sum"
	AggMean  Aggregation = "mean"
)

// ParseAggregation accepts the common spellings. Unknown input is AggUnset.
func ParseAggregation(s string) Aggregation {
	switch transform.ParseCode(s).Op {
	case transform.Count:
		return AggCount
	case transform.Sum:
		return AggSum
	case transform.Mean:
		return AggMean
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(AggNone), "raw":
		return AggNone
	}
	return AggUnset
}

// ============================================================================
// CHART SPEC - Contract between the AI service / custom JSON and the engine
// ============================================================================

// ChartSpec declares one chart. Field names refer to dataset columns and are
// not validated against the data at authoring time: missing columns yield an
// empty result, never an error.
type ChartSpec struct {
	Type        string          `json:"type"`
	X           string          `json:"x,omitempty"`
	Y           string          `json:"y,omitempty"`
	Series      string          `json:"series,omitempty"`
	Title       string          `json:"title,omitempty"`
	TransformX  string          `json:"transform_x,omitempty"`
	TransformY  string          `json:"transform_y,omitempty"`
	Aggregation Aggregation     `json:"aggregation,omitempty"`
	Filters     dataset.Filters `json:"filters,omitempty"`
}

// CodeX parses TransformX.
func (s ChartSpec) CodeX() transform.Code { return transform.ParseCode(s.TransformX) }

// CodeY parses TransformY.
func (s ChartSpec) CodeY() transform.Code { return transform.ParseCode(s.TransformY) }

// ============================================================================
// RESULT - Render-ready output of one processor
// ============================================================================

// Result is one processed chart.
//
// CategoryKey names the row field holding the category axis, ValueKey the
// primary numeric field. SeriesKeys, when set, are the per-series numeric
// fields of pivoted rows (stacked bars, multi-series lines, radar).
type Result struct {
	Spec        ChartSpec       `json:"spec"`
	Kind        Kind            `json:"kind"`
	Rows        []transform.Row `json:"rows"`
	CategoryKey string          `json:"category_key,omitempty"`
	ValueKey    string          `json:"value_key,omitempty"`
	SeriesKeys  []string        `json:"series_keys,omitempty"`
	Indicators  []Indicator     `json:"indicators,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// Indicator is one radar axis.
type Indicator struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

// IsEmpty reports whether the processor produced no rows.
func (r *Result) IsEmpty() bool { return r == nil || len(r.Rows) == 0 }

func newResult(spec ChartSpec, kind Kind) *Result {
	return &Result{Spec: spec, Kind: kind, Rows: []transform.Row{}, ValueKey: "value"}
}

func (r *Result) warnf(cfg *config, format string, args ...any) {
	msg := sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	cfg.logger.Warn(msg, zapKind(r.Kind), zapTitle(r.Spec.Title))
}
