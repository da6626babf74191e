package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	cols := []Column{
		{Name: "status", Kind: String},
		{Name: "hours", Kind: Number},
		{Name: "created", Kind: Date},
	}
	return FromRecords(cols, []map[string]any{
		{"status": "Done", "hours": 4.0, "created": "2024-01-10"},
		{"status": "Open", "hours": "2.5", "created": "2024-02-03"},
		{"status": "done", "hours": nil, "created": "2024-04-20"},
	})
}

func TestDatasetAccess(t *testing.T) {
	ds := sampleDataset()
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, "Open", ds.Value(1, "status").Raw)
	f, ok := ds.Value(1, "hours").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
	assert.True(t, ds.Value(2, "hours").IsNull())

	// out of range and unknown columns read as null
	assert.True(t, ds.Value(10, "status").IsNull())
	assert.True(t, ds.Value(0, "missing").IsNull())

	assert.Equal(t, []string{"hours"}, NumericColumns(ds))
	assert.Equal(t, Date, KindOf(ds, "created"))
	assert.Equal(t, Null, KindOf(ds, "missing"))
}

func TestFingerprintStable(t *testing.T) {
	a := sampleDataset()
	b := sampleDataset()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := FromRecords(a.Columns(), []map[string]any{{"status": "Done"}})
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestSubViewAndFilters(t *testing.T) {
	ds := sampleDataset()

	done := ApplyFilters(ds, Filters{"status": {"DONE"}})
	require.Equal(t, 2, done.Len())
	assert.Equal(t, "done", done.Value(1, "status").Raw)

	assert.Same(t, View(ds), ApplyFilters(ds, Filters{}))

	numeric := Numeric(ds, "hours")
	assert.Equal(t, 2, numeric.Len())
	assert.Equal(t, []float64{4, 2.5}, Floats(ds, "hours"))
}

func TestBucketDatesView(t *testing.T) {
	ds := sampleDataset()
	v := BucketDates(ds, "created", Quarter)

	assert.Equal(t, "2024-Q1", v.Value(0, "created").Raw)
	assert.Equal(t, "2024-Q1", v.Value(1, "created").Raw)
	assert.Equal(t, "2024-Q2", v.Value(2, "created").Raw)
	assert.True(t, v.Value(2, "created").HasTime)
	// untouched columns pass through
	assert.Equal(t, "Done", v.Value(0, "status").Raw)
}

type workPackage struct {
	Subject string
	Hours   float64
}

func TestAdapterView(t *testing.T) {
	adapter := NewAdapter[workPackage]().
		Column("subject", String, func(w workPackage) Value { return StringValue(w.Subject) }).
		Column("hours", Number, func(w workPackage) Value { return NumberValue(w.Hours) })

	view := adapter.Bind([]workPackage{{"Design", 3}, {"Build", 8}})
	require.Equal(t, 2, view.Len())
	assert.Equal(t, "Build", view.Value(1, "subject").Raw)
	assert.Equal(t, 8.0, view.Value(1, "hours").Num)
	assert.Len(t, view.Columns(), 2)

	recs := Records(view, 1)
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]any{"subject": "Design", "hours": 3.0}, recs[0])
}
