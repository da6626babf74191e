package dataset

// ============================================================================
// VIEW - Zero-Copy Data Access Interface
// ============================================================================
// Transforms and processors never own row data. They read through View.
//
// Implementations:
//   *Dataset      - resolved table (CSV, JSON, spreadsheet ingestion)
//   SubView       - subset of a parent (indices into parent, zero-copy)
//   MappedView    - rewrites one column on read (date buckets, derived keys)
//   AdapterView   - reads typed structs via accessor functions
// ============================================================================

// View provides indexed access to resolved rows.
// Value is called in tight loops - keep implementations fast.
type View interface {
	Len() int
	Value(index int, col string) Value
	Columns() []Column
}

// ============================================================================
// SUB VIEW - subset of a parent (zero-copy)
// ============================================================================

// SubView is a subset of a parent View. Holds indices into the parent.
type SubView struct {
	parent  View
	indices []int
}

// NewSubView creates a View over the given parent indices.
func NewSubView(parent View, indices []int) View {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, col string) Value {
	if i < 0 || i >= len(v.indices) {
		return NullValue
	}
	return v.parent.Value(v.indices[i], col)
}

func (v *SubView) Columns() []Column { return v.parent.Columns() }

// ============================================================================
// MAPPED VIEW - on-read column rewrite (zero-copy)
// ============================================================================

// MappedView wraps a View and rewrites one column on read.
// Used to bucket dates (date_group transforms) without copying rows.
type MappedView struct {
	parent View
	col    string
	fn     func(Value) Value
}

// NewMappedView rewrites col through fn on every read.
func NewMappedView(parent View, col string, fn func(Value) Value) View {
	return &MappedView{parent: parent, col: col, fn: fn}
}

func (v *MappedView) Len() int { return v.parent.Len() }

func (v *MappedView) Value(i int, col string) Value {
	val := v.parent.Value(i, col)
	if col == v.col {
		return v.fn(val)
	}
	return val
}

func (v *MappedView) Columns() []Column { return v.parent.Columns() }

// BucketDates returns a view where col reads as its date bucket key.
// Cells that do not parse as dates keep their original text.
func BucketDates(parent View, col string, g Granularity) View {
	return NewMappedView(parent, col, func(val Value) Value {
		if val.IsNull() {
			return val
		}
		key := BucketValue(val, g)
		out := Value{Kind: String, Raw: key}
		if t, ok := BucketTime(key); ok {
			out.Time, out.HasTime = t, true
		}
		return out
	})
}

// ============================================================================
// ADAPTER - zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := dataset.NewAdapter[WorkPackage]().
//	    Column("status", dataset.String, func(w WorkPackage) dataset.Value { return dataset.StringValue(w.Status) }).
//	    Column("hours", dataset.Number, func(w WorkPackage) dataset.Value { return dataset.NumberValue(w.Hours) })
//
//	view := adapter.Bind(packages)
//
// ============================================================================

// Adapter builds a View from typed structs. Declare once, bind many times.
type Adapter[T any] struct {
	cols []Column
	fns  map[string]func(T) Value
}

// NewAdapter creates an adapter for T.
func NewAdapter[T any]() *Adapter[T] {
	return &Adapter[T]{fns: make(map[string]func(T) Value)}
}

// Column registers an accessor. Re-registering a name replaces the accessor.
func (a *Adapter[T]) Column(name string, kind Kind, fn func(T) Value) *Adapter[T] {
	if _, exists := a.fns[name]; !exists {
		a.cols = append(a.cols, Column{Name: name, Kind: kind})
	}
	a.fns[name] = fn
	return a
}

// Bind creates a View over data. Holds a reference, no copy.
func (a *Adapter[T]) Bind(data []T) View {
	return &AdapterView[T]{data: data, cols: a.cols, fns: a.fns}
}

// AdapterView reads typed struct fields via registered accessors.
type AdapterView[T any] struct {
	data []T
	cols []Column
	fns  map[string]func(T) Value
}

func (v *AdapterView[T]) Len() int { return len(v.data) }

func (v *AdapterView[T]) Value(i int, col string) Value {
	if i < 0 || i >= len(v.data) {
		return NullValue
	}
	if fn, ok := v.fns[col]; ok {
		return fn(v.data[i])
	}
	return NullValue
}

func (v *AdapterView[T]) Columns() []Column { return v.cols }

// ============================================================================
// VIEW HELPERS
// ============================================================================

// KindOf returns the declared kind of col, or Null when absent.
func KindOf(view View, col string) Kind {
	for _, c := range view.Columns() {
		if c.Name == col {
			return c.Kind
		}
	}
	return Null
}

// HasColumn reports whether col is declared on the view.
func HasColumn(view View, col string) bool {
	for _, c := range view.Columns() {
		if c.Name == col {
			return true
		}
	}
	return false
}

// NumericColumns lists declared number columns in declaration order.
func NumericColumns(view View) []string {
	var out []string
	for _, c := range view.Columns() {
		if c.Kind == Number {
			out = append(out, c.Name)
		}
	}
	return out
}

// Records exports the first n rows (all when n <= 0) as plain maps.
func Records(view View, n int) []map[string]any {
	if n <= 0 || n > view.Len() {
		n = view.Len()
	}
	cols := view.Columns()
	out := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			rec[c.Name] = view.Value(i, c.Name).Any()
		}
		out[i] = rec
	}
	return out
}

// Floats collects the numeric readings of col, skipping cells that do not
// coerce.
func Floats(view View, col string) []float64 {
	out := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if f, ok := view.Value(i, col).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}
