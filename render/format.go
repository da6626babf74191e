package render

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label turns a field key into an axis or legend label:
// "story_points" → "Story Points".
func Label(key string) string {
	if key == "" {
		return ""
	}
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return cases.Title(language.English).String(key)
}

// FormatValue renders a number for tooltips and tables. Whole numbers get
// thousands separators, large values an SI suffix, the rest two decimals.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "-"
	case math.Abs(v) >= 1e6:
		return humanize.SIWithDigits(v, 2, "")
	case v == math.Trunc(v):
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}
