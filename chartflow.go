// Package chartflow turns tabular data plus declarative chart specs into
// render-ready charts.
//
// Usage:
//
//	import (
//	    "github.com/barasalah2/chartflow/engine"
//	    "github.com/barasalah2/chartflow/helpers"
//	    "github.com/barasalah2/chartflow/render"
//	)
//
//	ds, _, err := helpers.ParseCSVAuto(data)
//	result, err := engine.Process(engine.ChartSpec{
//	    Type: "pie", X: "status", Aggregation: engine.AggCount,
//	}, ds)
//	element := render.Build(result)
//
// Raw rows are resolved once into a typed dataset. The engine reshapes it
// per chart type and the render package maps the result to a chart element
// or a go-echarts chart. The dashboard package composes many specs at once.
//
// AI suggestions are handled separately by the translator package and
// persistence by the store package. The engine never calls any external
// service; all computation is local.
package chartflow
