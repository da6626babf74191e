// Package render maps processed charts to chart elements and go-echarts
// charts.
package render

import (
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/transform"
)

// ============================================================================
// ELEMENT - Renderer-facing description of one processed chart
// ============================================================================
// Build() is a pure mapping from engine.Result. It decides the category
// axis, the value keys, series colors and tooltip. Kinds the renderer
// cannot draw fall back to a bar of the value key with Fallback set.
// ============================================================================

// Palette holds the series colors, cycled by series index.
var Palette = [20]string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
	"#14B8A6", "#EAB308", "#DC2626", "#A855F7", "#0EA5E9",
	"#D946EF", "#22C55E", "#FB923C", "#64748B", "#BE123C",
}

// ColorFor returns the palette color of series i.
func ColorFor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Series is one value key drawn on the chart.
type Series struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Group string `json:"group,omitempty"` // scatter points sharing a series label
}

// Tooltip configures hover text. Formatter is an echarts template.
type Tooltip struct {
	Trigger   string `json:"trigger"`
	Formatter string `json:"formatter,omitempty"`
}

// Element is everything needed to draw one chart.
type Element struct {
	Kind        engine.Kind        `json:"kind"`
	Requested   string             `json:"requested"`
	Title       string             `json:"title,omitempty"`
	Caption     string             `json:"caption,omitempty"`
	CategoryKey string             `json:"categoryKey,omitempty"`
	XLabel      string             `json:"xLabel,omitempty"`
	YLabel      string             `json:"yLabel,omitempty"`
	Series      []Series           `json:"series"`
	Tooltip     Tooltip            `json:"tooltip"`
	Horizontal  bool               `json:"horizontal,omitempty"`
	Stacked     bool               `json:"stacked,omitempty"`
	Fallback    bool               `json:"fallback,omitempty"`
	Empty       bool               `json:"empty,omitempty"`
	Indicators  []engine.Indicator `json:"indicators,omitempty"`
	Rows        []transform.Row    `json:"rows"`
}

// drawable lists the kinds with a dedicated chart. Everything else,
// violin included, is drawn as a bar of the value key.
var drawable = map[engine.Kind]bool{
	engine.Pie: true, engine.Donut: true,
	engine.Bar: true, engine.HorizontalBar: true, engine.StackedBar: true, engine.GroupedBar: true,
	engine.Line: true, engine.Area: true,
	engine.Scatter: true, engine.Bubble: true,
	engine.Histogram: true, engine.Box: true,
	engine.Heatmap: true, engine.Treemap: true,
	engine.Waterfall: true, engine.Funnel: true,
	engine.Radar: true, engine.Sunburst: true,
}

// Build maps a processed result to an Element.
func Build(r *engine.Result) Element {
	e := Element{
		Kind:        r.Kind,
		Requested:   r.Spec.Type,
		Title:       r.Spec.Title,
		Caption:     engine.Summary(r),
		CategoryKey: r.CategoryKey,
		Indicators:  r.Indicators,
		Rows:        r.Rows,
		Empty:       r.IsEmpty(),
	}
	if e.Rows == nil {
		e.Rows = []transform.Row{}
	}

	if !drawable[r.Kind] {
		e.Kind = engine.Bar
		e.Fallback = true
		if e.CategoryKey == "" {
			e.CategoryKey = firstTextKey(r.Rows)
		}
	}

	key := DataKey(r)
	e.XLabel = Label(e.CategoryKey)
	e.YLabel = Label(key)

	switch {
	case e.Fallback:
		e.Series = []Series{{Key: "value", Name: Label("value"), Color: ColorFor(0)}}
	case len(r.SeriesKeys) > 0:
		e.Series = make([]Series, len(r.SeriesKeys))
		for i, k := range r.SeriesKeys {
			e.Series[i] = Series{Key: k, Name: Label(k), Color: ColorFor(i)}
		}
	case (r.Kind == engine.Scatter || r.Kind == engine.Bubble) && hasField(r.Rows, "series"):
		for i, g := range distinctLabels(r.Rows, "series") {
			e.Series = append(e.Series, Series{Key: key, Name: g, Color: ColorFor(i), Group: g})
		}
	default:
		name := r.Spec.Y
		if name == "" || r.Kind == engine.Pie || r.Kind == engine.Donut {
			name = key
		}
		e.Series = []Series{{Key: key, Name: Label(name), Color: ColorFor(0)}}
	}

	e.Horizontal = r.Kind == engine.HorizontalBar
	e.Stacked = r.Kind == engine.StackedBar || r.Kind == engine.Waterfall
	e.Tooltip = tooltipFor(e.Kind)
	return e
}

// DataKey picks the numeric field to draw: the processor's hint when rows
// carry it, then value, count, the y field and finally the first numeric
// field in key order.
func DataKey(r *engine.Result) string {
	if len(r.Rows) == 0 {
		if r.ValueKey != "" {
			return r.ValueKey
		}
		return "value"
	}
	first := r.Rows[0]
	for _, k := range []string{r.ValueKey, "value", "count", r.Spec.Y} {
		if k == "" {
			continue
		}
		if _, ok := first.Float(k); ok {
			return k
		}
	}
	for _, k := range first.Keys() {
		if _, ok := first.Float(k); ok {
			return k
		}
	}
	return "value"
}

func tooltipFor(kind engine.Kind) Tooltip {
	switch kind {
	case engine.Pie, engine.Donut, engine.Sunburst:
		return Tooltip{Trigger: "item", Formatter: "{b}: {c} ({d}%)"}
	case engine.Funnel, engine.Treemap:
		return Tooltip{Trigger: "item", Formatter: "{b}: {c}"}
	case engine.Scatter, engine.Bubble:
		return Tooltip{Trigger: "item", Formatter: "{a}: ({c})"}
	case engine.Heatmap, engine.Radar:
		return Tooltip{Trigger: "item"}
	}
	return Tooltip{Trigger: "axis"}
}

func hasField(rows []transform.Row, key string) bool {
	for _, r := range rows {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}

func distinctLabels(rows []transform.Row, key string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		l := r.Label(key)
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// firstTextKey finds a string field to use as category axis.
func firstTextKey(rows []transform.Row) string {
	if len(rows) == 0 {
		return ""
	}
	for _, k := range rows[0].Keys() {
		if _, ok := rows[0][k].(string); ok {
			return k
		}
	}
	return ""
}
