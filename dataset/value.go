// Package dataset holds typed tabular data for the chart pipeline.
//
// Raw rows arrive as loosely typed maps (JSON from an API call, CSV cells,
// spreadsheet cells). They are resolved once into a Dataset whose cells are
// tagged Values, so transforms never re-parse the same string twice.
package dataset

import (
	"strconv"
	"time"
)

// Kind tags the resolved type of a cell or column.
type Kind uint8

const (
	Null Kind = iota
	Number
	String
	Date
	Bool
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case String:
		return "string"
	case Date:
		return "date"
	case Bool:
		return "bool"
	default:
		return "null"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// ParseKind is the inverse of Kind.String. Unknown names map to String.
func ParseKind(s string) Kind {
	switch s {
	case "number", "numeric":
		return Number
	case "date", "temporal":
		return Date
	case "bool", "boolean":
		return Bool
	case "null":
		return Null
	default:
		return String
	}
}

// Value is a single resolved cell.
//
// Raw always keeps the original text so best-effort fallbacks (an unparseable
// date used as a bucket key, for instance) can return it unchanged. Num and
// Time are filled at ingestion whenever the raw text coerces, regardless of
// the column kind.
type Value struct {
	Kind    Kind
	Raw     string
	Num     float64
	HasNum  bool
	Time    time.Time
	HasTime bool
}

// NullValue is the zero cell.
var NullValue = Value{Kind: Null}

// NumberValue builds a numeric cell.
func NumberValue(f float64) Value {
	return Value{
		Kind:   Number,
		Raw:    strconv.FormatFloat(f, 'f', -1, 64),
		Num:    f,
		HasNum: true,
	}
}

// StringValue builds a text cell. Numeric-looking text keeps its number.
func StringValue(s string) Value {
	v := Value{Kind: String, Raw: s}
	v.Num, v.HasNum = ParseNumber(s)
	return v
}

// DateValue builds a date cell.
func DateValue(raw string, t time.Time) Value {
	return Value{Kind: Date, Raw: raw, Time: t, HasTime: true}
}

// BoolValue builds a boolean cell.
func BoolValue(b bool) Value {
	v := Value{Kind: Bool, Raw: strconv.FormatBool(b)}
	if b {
		v.Num = 1
	}
	return v
}

// IsNull reports whether the cell carries no value.
func (v Value) IsNull() bool { return v.Kind == Null }

// Float returns the numeric reading of the cell.
func (v Value) Float() (float64, bool) {
	if v.Kind == Bool {
		return 0, false
	}
	return v.Num, v.HasNum
}

// Key is the grouping key of the cell. Null cells return "".
func (v Value) Key() string {
	switch v.Kind {
	case Null:
		return ""
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Raw
	}
}

// Any converts the cell to a plain Go value for output records.
func (v Value) Any() any {
	switch v.Kind {
	case Null:
		return nil
	case Number:
		return v.Num
	case Bool:
		return v.Num == 1
	default:
		return v.Raw
	}
}
