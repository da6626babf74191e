package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// Column describes one resolved column.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Dataset is an immutable table of resolved cells. It implements View.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  [][]Value
}

// New wraps already resolved rows. Rows shorter than cols read as Null.
func New(cols []Column, rows [][]Value) *Dataset {
	d := &Dataset{
		cols:  cols,
		index: make(map[string]int, len(cols)),
		rows:  rows,
	}
	for i, c := range cols {
		d.index[c.Name] = i
	}
	return d
}

// FromRecords resolves loosely typed records once, using the column kinds
// provided. Keys missing from cols are ignored.
func FromRecords(cols []Column, records []map[string]any) *Dataset {
	rows := make([][]Value, len(records))
	for i, rec := range records {
		row := make([]Value, len(cols))
		for j, c := range cols {
			row[j] = Cell(rec[c.Name], c.Kind)
		}
		rows[i] = row
	}
	return New(cols, rows)
}

// FromStrings resolves string cells (CSV, spreadsheet) by column position.
func FromStrings(cols []Column, records [][]string) *Dataset {
	rows := make([][]Value, len(records))
	for i, rec := range records {
		row := make([]Value, len(cols))
		for j, c := range cols {
			if j < len(rec) {
				row[j] = Cell(rec[j], c.Kind)
			}
		}
		rows[i] = row
	}
	return New(cols, rows)
}

// Cell coerces one raw value toward kind. Coercion is best effort: a number
// column cell that does not parse becomes Null but keeps its raw text.
func Cell(raw any, kind Kind) Value {
	if raw == nil {
		return NullValue
	}

	var text string
	switch v := raw.(type) {
	case float64:
		if kind == Number || kind == String {
			return NumberValue(v)
		}
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Cell(float64(v), kind)
	case int:
		return Cell(float64(v), kind)
	case int64:
		return Cell(float64(v), kind)
	case bool:
		if kind == Bool || kind == String {
			return BoolValue(v)
		}
		text = strconv.FormatBool(v)
	case time.Time:
		return DateValue(v.Format(time.RFC3339), v)
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprint(v)
	}

	text = strings.TrimSpace(text)
	if isNullText(text) {
		return Value{Kind: Null, Raw: text}
	}

	switch kind {
	case Number:
		if f, ok := ParseNumber(text); ok {
			v := NumberValue(f)
			v.Raw = text
			return v
		}
		return Value{Kind: Null, Raw: text}
	case Date:
		if t, ok := ParseDate(text); ok {
			return DateValue(text, t)
		}
		return StringValue(text)
	case Bool:
		switch strings.ToLower(text) {
		case "true", "yes", "1":
			return BoolValue(true)
		case "false", "no", "0":
			return BoolValue(false)
		}
		return StringValue(text)
	default:
		return StringValue(text)
	}
}

func isNullText(s string) bool {
	switch s {
	case "", "null", "NULL", "N/A", "n/a", "undefined":
		return true
	}
	return false
}

func (d *Dataset) Len() int { return len(d.rows) }

func (d *Dataset) Value(i int, col string) Value {
	if i < 0 || i >= len(d.rows) {
		return NullValue
	}
	j, ok := d.index[col]
	if !ok || j >= len(d.rows[i]) {
		return NullValue
	}
	return d.rows[i][j]
}

func (d *Dataset) Columns() []Column { return d.cols }

// Records exports the first n rows (all when n <= 0) as plain maps.
func (d *Dataset) Records(n int) []map[string]any {
	return Records(d, n)
}

// Fingerprint hashes every cell so equal datasets share cache entries.
func (d *Dataset) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, c := range d.cols {
		h.WriteString(c.Name)
		h.Write([]byte{byte(c.Kind), 0})
	}
	for _, row := range d.rows {
		for _, v := range row {
			h.Write([]byte{byte(v.Kind)})
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.Num))
			h.Write(buf[:])
			h.WriteString(v.Raw)
			h.Write([]byte{0})
		}
		h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
