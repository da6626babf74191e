package engine

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrUnknownKind is returned by Process under WithStrictKinds when the spec
// names a chart type outside Kinds.
var ErrUnknownKind = errors.New("unknown chart type")

var kindAliases = map[string]Kind{
	"doughnut":       Donut,
	"ring":           Donut,
	"column":         Bar,
	"columns":        Bar,
	"vertical_bar":   Bar,
	"horizontal":     HorizontalBar,
	"horizontalbar":  HorizontalBar,
	"hbar":           HorizontalBar,
	"bar_horizontal": HorizontalBar,
	"stacked":        StackedBar,
	"stackedbar":     StackedBar,
	"stacked_column": StackedBar,
	"grouped":        GroupedBar,
	"groupedbar":     GroupedBar,
	"clustered_bar":  GroupedBar,
	"multi_bar":      GroupedBar,
	"timeseries":     Line,
	"time_series":    Line,
	"trend":          Line,
	"stacked_area":   Area,
	"point":          Scatter,
	"points":         Scatter,
	"distribution":   Histogram,
	"hist":           Histogram,
	"boxplot":        Box,
	"box_plot":       Box,
	"box_whisker":    Box,
	"heat_map":       Heatmap,
	"matrix":         Heatmap,
	"correlation":    Heatmap,
	"tree_map":       Treemap,
	"bridge":         Waterfall,
	"spider":         Radar,
	"polar":          Radar,
	"sun_burst":      Sunburst,
}

// ParseKind maps a chart type string to a Kind. Case, separators and a
// trailing "chart" are ignored. ok is false for unknown types.
func ParseKind(s string) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	key = strings.TrimSuffix(strings.TrimSuffix(key, "chart"), "_")

	if k := Kind(key); k.Valid() {
		return k, true
	}
	if k, ok := kindAliases[key]; ok {
		return k, true
	}
	if k, ok := kindAliases[strings.ReplaceAll(key, "_", "")]; ok {
		return k, true
	}
	return Kind(key), false
}

// NormalizeChartSpec applies deterministic rules to make a spec processable.
// Run before dispatch to correct common AI output mistakes:
//
//  1. Field names and transform codes are trimmed.
//  2. Known type aliases map to their canonical Kind.
//  3. An unset aggregation is taken from transform_y, then transform_x, when
//     either names count, sum or mean.
//
// The title is never consulted.
func NormalizeChartSpec(spec ChartSpec) ChartSpec {
	return normalizeChartSpec(spec, zap.NewNop())
}

func normalizeChartSpec(spec ChartSpec, logger *zap.Logger) ChartSpec {
	before := spec

	spec.X = strings.TrimSpace(spec.X)
	spec.Y = strings.TrimSpace(spec.Y)
	spec.Series = strings.TrimSpace(spec.Series)
	spec.TransformX = strings.TrimSpace(spec.TransformX)
	spec.TransformY = strings.TrimSpace(spec.TransformY)

	// Rule 2: canonical type
	if k, ok := ParseKind(spec.Type); ok {
		spec.Type = string(k)
	}

	// Rule 3: explicit aggregation from transform codes
	spec.Aggregation = ParseAggregation(string(spec.Aggregation))
	if spec.Aggregation == AggUnset {
		for _, code := range []string{spec.TransformY, spec.TransformX} {
			if agg := ParseAggregation(code); agg != AggUnset && agg != AggNone {
				spec.Aggregation = agg
				break
			}
		}
	}

	if spec.Type != before.Type || spec.Aggregation != before.Aggregation {
		logger.Debug("normalized chart spec",
			zap.String("type", spec.Type),
			zap.String("aggregation", string(spec.Aggregation)),
			zap.String("title", spec.Title))
	}
	return spec
}
