package render

import (
	"math"

	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/transform"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ============================================================================
// ECHARTS - Element → go-echarts chart
// ============================================================================

const (
	chartWidth  = "100%"
	chartHeight = "420px"
)

// heatColors is the visual map ramp from low to high.
var heatColors = []string{"#EEF2FF", "#A5B4FC", "#4F46E5", "#312E81"}

// Charter builds the go-echarts chart for the element.
func (e Element) Charter() components.Charter {
	switch e.Kind {
	case engine.Pie, engine.Donut:
		return e.pie()
	case engine.Line, engine.Area:
		return e.line()
	case engine.Scatter, engine.Bubble:
		return e.scatter()
	case engine.Heatmap:
		return e.heatmap()
	case engine.Treemap:
		return e.treemap()
	case engine.Funnel:
		return e.funnel()
	case engine.Radar:
		return e.radar()
	case engine.Sunburst:
		return e.sunburst()
	case engine.Box:
		return e.boxplot()
	case engine.Waterfall:
		return e.waterfall()
	}
	return e.bar()
}

func (e Element) globalOpts() []charts.GlobalOpts {
	subtitle := e.Caption
	if e.Fallback {
		subtitle = "Shown as a bar chart: " + e.Requested + " is not supported."
	}
	tooltip := opts.Tooltip{Show: opts.Bool(true), Trigger: e.Tooltip.Trigger}
	if e.Tooltip.Formatter != "" {
		tooltip.Formatter = types.FuncStr(e.Tooltip.Formatter)
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: e.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(tooltip),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(e.Series) > 1), Top: "bottom"}),
	}
}

func (e Element) categories() []string {
	out := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		out[i] = r.Label(e.CategoryKey)
	}
	return out
}

func (e Element) bar() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(e.globalOpts(),
		charts.WithXAxisOpts(opts.XAxis{Name: e.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: e.YLabel}),
	)...)
	bar.SetXAxis(e.categories())

	for _, s := range e.Series {
		data := make([]opts.BarData, len(e.Rows))
		for i, r := range e.Rows {
			data[i] = opts.BarData{Value: r.Num(s.Key)}
		}
		seriesOpts := []charts.SeriesOpts{charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color})}
		if e.Stacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(s.Name, data, seriesOpts...)
	}
	if e.Horizontal {
		bar.XYReversal()
	}
	return bar
}

// waterfall stacks a transparent base under the step bar.
func (e Element) waterfall() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(e.globalOpts()...)
	bar.SetXAxis(e.categories())

	base := make([]opts.BarData, len(e.Rows))
	steps := make([]opts.BarData, len(e.Rows))
	for i, r := range e.Rows {
		delta := r.Num("delta")
		color := ColorFor(1)
		if delta < 0 {
			color = ColorFor(3)
		}
		base[i] = opts.BarData{Value: r.Num("base")}
		steps[i] = opts.BarData{Value: math.Abs(delta), ItemStyle: &opts.ItemStyle{Color: color}}
	}
	stack := charts.WithBarChartOpts(opts.BarChart{Stack: "waterfall"})
	bar.AddSeries("base", base, stack, charts.WithItemStyleOpts(opts.ItemStyle{Color: "transparent"}))
	bar.AddSeries(e.YLabel, steps, stack)
	return bar
}

func (e Element) line() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(e.globalOpts(),
		charts.WithXAxisOpts(opts.XAxis{Name: e.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: e.YLabel}),
	)...)
	line.SetXAxis(e.categories())

	for _, s := range e.Series {
		data := make([]opts.LineData, len(e.Rows))
		for i, r := range e.Rows {
			data[i] = opts.LineData{Value: r.Num(s.Key)}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
		}
		if e.Kind == engine.Area {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}))
		}
		line.AddSeries(s.Name, data, seriesOpts...)
	}
	return line
}

func (e Element) pie() *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(e.globalOpts()...)

	data := make([]opts.PieData, len(e.Rows))
	for i, r := range e.Rows {
		data[i] = opts.PieData{
			Name:      r.Label(e.CategoryKey),
			Value:     r.Num(e.Series[0].Key),
			ItemStyle: &opts.ItemStyle{Color: ColorFor(i)},
		}
	}
	var radius any = "70%"
	if e.Kind == engine.Donut {
		radius = []string{"40%", "70%"}
	}
	pie.AddSeries(e.Series[0].Name, data, charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	return pie
}

func (e Element) scatter() *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(e.globalOpts(),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: e.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: e.YLabel}),
	)...)

	for _, s := range e.Series {
		var data []opts.ScatterData
		for _, r := range e.Rows {
			if s.Group != "" && r.Label("series") != s.Group {
				continue
			}
			point := opts.ScatterData{Value: []float64{r.Num(e.CategoryKey), r.Num(s.Key)}}
			if radius, ok := r.Float("radius"); ok {
				point.SymbolSize = int(math.Max(4, math.Round(radius*2)))
			}
			data = append(data, point)
		}
		sc.AddSeries(s.Name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	return sc
}

func (e Element) heatmap() *charts.HeatMap {
	xs := distinctLabels(e.Rows, "x")
	ys := distinctLabels(e.Rows, "y")
	xi := indexOf(xs)
	yi := indexOf(ys)

	data := make([]opts.HeatMapData, len(e.Rows))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range e.Rows {
		v := r.Num("value")
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		data[i] = opts.HeatMapData{Value: [3]any{xi[r.Label("x")], yi[r.Label("y")], v}}
	}
	if len(e.Rows) == 0 {
		lo, hi = 0, 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(e.globalOpts(),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)...)
	hm.SetXAxis(xs)
	hm.AddSeries(e.YLabel, data)
	return hm
}

func (e Element) treemap() *charts.TreeMap {
	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(e.globalOpts()...)

	nodes := make([]opts.TreeMapNode, len(e.Rows))
	for i, r := range e.Rows {
		nodes[i] = opts.TreeMapNode{Name: r.Label("name"), Value: int(math.Round(r.Num("value")))}
	}
	tm.AddSeries(e.YLabel, nodes)
	return tm
}

func (e Element) funnel() *charts.Funnel {
	f := charts.NewFunnel()
	f.SetGlobalOptions(e.globalOpts()...)

	data := make([]opts.FunnelData, len(e.Rows))
	for i, r := range e.Rows {
		data[i] = opts.FunnelData{Name: r.Label(e.CategoryKey), Value: r.Num(e.Series[0].Key)}
	}
	f.AddSeries(e.Series[0].Name, data)
	return f
}

func (e Element) radar() *charts.Radar {
	indicators := make([]*opts.Indicator, len(e.Indicators))
	for i, ind := range e.Indicators {
		indicators[i] = &opts.Indicator{Name: Label(ind.Name), Max: float32(ind.Max)}
	}

	rd := charts.NewRadar()
	rd.SetGlobalOptions(append(e.globalOpts(),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators, Shape: "polygon"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)...)

	for i, r := range e.Rows {
		vals := make([]float64, len(e.Indicators))
		for j, ind := range e.Indicators {
			vals[j] = r.Num(ind.Name)
		}
		name := r.Label(e.CategoryKey)
		rd.AddSeries(name, []opts.RadarData{{Name: name, Value: vals}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(i)}))
	}
	return rd
}

func (e Element) sunburst() *charts.Sunburst {
	sb := charts.NewSunburst()
	sb.SetGlobalOptions(e.globalOpts()...)

	data := make([]opts.SunBurstData, len(e.Rows))
	for i, r := range e.Rows {
		data[i] = opts.SunBurstData{Name: r.Label("name"), Value: r.Num("value")}
		if kids, ok := r["children"].([]transform.Row); ok {
			for _, k := range kids {
				data[i].Children = append(data[i].Children, &opts.SunBurstData{Name: k.Label("name"), Value: k.Num("value")})
			}
		}
	}
	sb.AddSeries(e.YLabel, data)
	return sb
}

func (e Element) boxplot() *charts.BoxPlot {
	bp := charts.NewBoxPlot()
	bp.SetGlobalOptions(append(e.globalOpts(),
		charts.WithYAxisOpts(opts.YAxis{Name: e.YLabel}),
	)...)
	bp.SetXAxis(e.categories())

	data := make([]opts.BoxPlotData, len(e.Rows))
	for i, r := range e.Rows {
		data[i] = opts.BoxPlotData{
			Name:  r.Label(e.CategoryKey),
			Value: []float64{r.Num("min"), r.Num("q1"), r.Num("median"), r.Num("q3"), r.Num("max")},
		}
	}
	bp.AddSeries(e.Series[0].Name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: e.Series[0].Color}))
	return bp
}

func indexOf(labels []string) map[string]int {
	m := make(map[string]int, len(labels))
	for i, l := range labels {
		m[l] = i
	}
	return m
}
