// Package transform implements the named aggregation and reshaping
// operations applied to a column before charting.
//
// Every operation is a pure function of a dataset.View and its parameters
// and returns freshly built rows. Cells that do not coerce to a number are
// null for numeric purposes: they add nothing to sums and are left out of
// denominators and order statistics.
package transform

import (
	"strconv"
	"strings"

	"github.com/barasalah2/chartflow/dataset"
)

// Op names a transform.
type Op string

const (
	None           Op = ""
	Count          Op = "count"
	Sum            Op = "sum"
	Mean           Op = "mean"
	Median         Op = "median"
	Min            Op = "min"
	Max            Op = "max"
	Std            Op = "std"
	PercentOfTotal Op = "percent_of_total"
	Rank           Op = "rank"
	TopK           Op = "topk"
	BottomK        Op = "bottomk"
	OtherGroup     Op = "other_group"
	RollingMean    Op = "rolling_mean"
	Bin            Op = "bin"
	Normalize      Op = "normalize"
	ZScore         Op = "z_score"
	LogScale       Op = "log_scale"
	Alphabetical   Op = "alphabetical"
	Frequency      Op = "frequency"
	DateGroup      Op = "date_group"
	Correlation    Op = "correlation_matrix"
)

var knownOps = map[Op]bool{
	Count: true, Sum: true, Mean: true, Median: true, Min: true, Max: true,
	Std: true, PercentOfTotal: true, Rank: true, TopK: true, BottomK: true,
	OtherGroup: true, RollingMean: true, Bin: true, Normalize: true,
	ZScore: true, LogScale: true, Alphabetical: true, Frequency: true,
	DateGroup: true, Correlation: true,
}

// Code is a parsed transform code such as "topk:5" or "date_group:quarter".
type Code struct {
	Op    Op
	Param string
}

// ParseCode parses a transform code. Unknown or empty codes parse to None.
func ParseCode(s string) Code {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return Code{}
	}

	op, param, _ := strings.Cut(s, ":")
	op = strings.TrimSpace(op)
	param = strings.TrimSpace(param)

	switch op {
	case "aggregate_sum", "total":
		return Code{Op: Sum, Param: param}
	case "aggregate_mean", "avg", "average", "aggregate_avg":
		return Code{Op: Mean, Param: param}
	case "aggregate_count":
		return Code{Op: Count, Param: param}
	case "correlation", "correlation_matrix":
		return Code{Op: Correlation}
	case "zscore", "z_score":
		return Code{Op: ZScore}
	case "log", "log_scale":
		return Code{Op: LogScale}
	case "percentage", "percent", "percent_of_total":
		return Code{Op: PercentOfTotal}
	case "date_group", "group_by_date":
		g, ok := dataset.ParseGranularity(param)
		if !ok {
			g = dataset.Month
		}
		return Code{Op: DateGroup, Param: string(g)}
	}

	if g, ok := dataset.ParseGranularity(op); ok && param == "" {
		return Code{Op: DateGroup, Param: string(g)}
	}

	if knownOps[Op(op)] {
		return Code{Op: Op(op), Param: param}
	}
	return Code{}
}

// String renders the code back to its canonical text form.
func (c Code) String() string {
	if c.Param == "" {
		return string(c.Op)
	}
	return string(c.Op) + ":" + c.Param
}

// IsZero reports whether no transform is set.
func (c Code) IsZero() bool { return c.Op == None }

// Granularity returns the date bucket size of a date_group code.
func (c Code) Granularity() (dataset.Granularity, bool) {
	if c.Op != DateGroup {
		return "", false
	}
	return dataset.ParseGranularity(c.Param)
}

// IntParam reads the parameter as a positive integer, falling back to def.
func (c Code) IntParam(def int) int {
	n, err := strconv.Atoi(c.Param)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// FloatParam reads the parameter as a float, falling back to def.
func (c Code) FloatParam(def float64) float64 {
	f, err := strconv.ParseFloat(c.Param, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

// IsAggregate reports whether the code groups rows by the column
// (count, sum or mean).
func (c Code) IsAggregate() bool {
	return c.Op == Count || c.Op == Sum || c.Op == Mean
}

// IsNarrowing reports whether the code can reorder or trim rows that were
// already aggregated.
func (c Code) IsNarrowing() bool {
	switch c.Op {
	case TopK, BottomK, OtherGroup, Rank, PercentOfTotal, Alphabetical, Frequency:
		return true
	}
	return false
}
