package engine

import (
	"fmt"

	"github.com/barasalah2/chartflow/dataset"
	"go.uber.org/zap"
)

// ============================================================================
// PROCESS - Dispatcher from ChartSpec to chart-family processor
// ============================================================================
// Entry point: Process(spec, view, opts...)
//
// Pipeline:
//   1. NormalizeChartSpec (aliases, explicit aggregation)
//   2. Apply spec filters → SubView (zero-copy)
//   3. Dispatch to the processor for the chart family
//   4. Return Result (possibly empty, never nil on success)
//
// Processors never fail on bad data. Missing fields or columns produce an
// empty Result; cells that do not coerce are skipped or count as null.
// ============================================================================

type processFunc func(r *Result, view dataset.View, cfg *config)

var processors = map[Kind]processFunc{
	Pie:           processPie,
	Donut:         processPie,
	Bar:           processBar,
	HorizontalBar: processBar,
	StackedBar:    processStackedBar,
	GroupedBar:    processStackedBar,
	Line:          processLine,
	Area:          processLine,
	Scatter:       processScatter,
	Bubble:        processScatter,
	Histogram:     processHistogram,
	Box:           processBox,
	Violin:        processBox,
	Heatmap:       processHeatmap,
	Treemap:       processTreemap,
	Waterfall:     processWaterfall,
	Funnel:        processFunnel,
	Radar:         processRadar,
	Sunburst:      processSunburst,
}

// Process runs one chart spec over view and returns render-ready records.
//
// An unknown chart type is processed like a bar chart while Result.Kind
// keeps the unknown name, so the renderer can fall back. With
// WithStrictKinds it returns ErrUnknownKind instead.
func Process(spec ChartSpec, view dataset.View, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	spec = normalizeChartSpec(spec, cfg.logger)

	kind, known := ParseKind(spec.Type)
	if !known {
		if cfg.strictKinds {
			return nil, fmt.Errorf("process %q: %w", spec.Type, ErrUnknownKind)
		}
		cfg.logger.Warn("unknown chart type, processing as bar",
			zap.String("type", spec.Type), zapTitle(spec.Title))
	}

	r := newResult(spec, kind)
	if view == nil || view.Len() == 0 {
		return r, nil
	}

	filtered := dataset.ApplyFilters(view, spec.Filters)
	if filtered.Len() == 0 {
		cfg.logger.Debug("no rows match chart filters", zapKind(kind), zapTitle(spec.Title))
		return r, nil
	}

	fn, ok := processors[kind]
	if !ok {
		fn = processBar
	}
	fn(r, filtered, cfg)

	cfg.logger.Debug("processed chart",
		zapKind(r.Kind),
		zapTitle(spec.Title),
		zap.Int("input_rows", filtered.Len()),
		zap.Int("output_rows", len(r.Rows)))
	return r, nil
}
