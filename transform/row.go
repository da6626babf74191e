package transform

import (
	"sort"
	"strconv"
	"strings"
)

// Row is one processed record handed to the renderer. It always carries
// "value" and, for grouping transforms, "count".
type Row map[string]any

// Float reads key as a number. Strings holding numbers are accepted.
func (r Row) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// Num reads key as a number, defaulting to 0.
func (r Row) Num(key string) float64 {
	f, _ := r.Float(key)
	return f
}

// Label reads key as display text.
func (r Row) Label(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys lists the row's fields in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// SORTING
// ============================================================================

// SortByValue orders rows by their "value" field. Ties keep input order.
func SortByValue(rows []Row, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i].Num("value") > rows[j].Num("value")
		}
		return rows[i].Num("value") < rows[j].Num("value")
	})
}

// SortByNum orders rows by a numeric field. Ties keep input order.
func SortByNum(rows []Row, key string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i].Num(key) > rows[j].Num(key)
		}
		return rows[i].Num(key) < rows[j].Num(key)
	})
}

// SortByLabel orders rows lexically (case-insensitive) by a text field.
func SortByLabel(rows []Row, key string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Label(key)) < strings.ToLower(rows[j].Label(key))
	})
}
