package dataset

import (
	"strings"
)

// ============================================================================
// FILTERS - Column-Based Filtering via View
// ============================================================================
// Single-pass filter: checks all column constraints per row in one loop.
// Returns a SubView (index list into parent) - zero data copy.
// ============================================================================

// Filters restrict rows by allowed column values.
// OR within a column, AND across columns. Empty = all rows.
type Filters map[string][]string

// IsEmpty returns true if no constraint is set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of rows matching every column constraint.
// Matching is case-insensitive on the cell's grouping key.
func ApplyFilters(view View, filters Filters) View {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for col, allowed := range filters {
		if len(allowed) > 0 {
			sets[col] = toLowerSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for col, set := range sets {
			if !set[strings.ToLower(view.Value(i, col).Key())] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return NewSubView(view, indices)
}

// Where returns a view of rows for which keep returns true.
func Where(view View, keep func(i int) bool) View {
	indices := make([]int, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return NewSubView(view, indices)
}

// Numeric returns a view of rows where every listed column coerces to a number.
func Numeric(view View, cols ...string) View {
	return Where(view, func(i int) bool {
		for _, c := range cols {
			if _, ok := view.Value(i, c).Float(); !ok {
				return false
			}
		}
		return true
	})
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
