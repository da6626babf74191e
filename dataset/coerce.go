package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// COERCION - best-effort numeric and date parsing
// ============================================================================
// Failures never error. Callers get ok=false and decide the fallback.
// ============================================================================

// ParseNumber strips every character except digits, '.' and '-' and parses
// the remainder as a float. "$1,234.50" → 1234.5.
func ParseNumber(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDate attempts each known layout in turn. Bare years are not treated
// as dates here, otherwise every four-digit amount would become one.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Granularity selects the date bucket size.
type Granularity string

const (
	Year    Granularity = "year"
	Quarter Granularity = "quarter"
	Month   Granularity = "month"
	Day     Granularity = "day"
)

// ParseGranularity accepts the transform spellings, including month_year.
func ParseGranularity(s string) (Granularity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year", "yearly":
		return Year, true
	case "quarter", "quarterly":
		return Quarter, true
	case "month", "month_year", "monthly":
		return Month, true
	case "day", "date", "daily":
		return Day, true
	}
	return "", false
}

// BucketKey formats t as the canonical key for g.
func BucketKey(t time.Time, g Granularity) string {
	switch g {
	case Year:
		return strconv.Itoa(t.Year())
	case Quarter:
		q := (int(t.Month()) + 2) / 3
		return fmt.Sprintf("%d-Q%d", t.Year(), q)
	case Month:
		return t.Format("Jan 2006")
	default:
		return t.Format("2006-01-02")
	}
}

// DateBucket converts a raw value to its bucket key. Unparseable input is
// returned unchanged.
func DateBucket(raw string, g Granularity) string {
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	return BucketKey(t, g)
}

// BucketValue is DateBucket for an already resolved cell.
func BucketValue(v Value, g Granularity) string {
	if v.HasTime {
		return BucketKey(v.Time, g)
	}
	return DateBucket(v.Raw, g)
}

// BucketTime maps a bucket key (or any date-like string) back to a point in
// time for chronological ordering.
func BucketTime(key string) (time.Time, bool) {
	key = strings.TrimSpace(key)
	if len(key) == 4 {
		if y, err := strconv.Atoi(key); err == nil {
			return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	var y, q int
	if n, err := fmt.Sscanf(key, "%d-Q%d", &y, &q); err == nil && n == 2 && q >= 1 && q <= 4 {
		return time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
	}
	return ParseDate(key)
}

// LooksTemporal reports whether most non-empty keys order as dates.
func LooksTemporal(keys []string) bool {
	total, hits := 0, 0
	for _, k := range keys {
		if k == "" {
			continue
		}
		total++
		if _, ok := BucketTime(k); ok {
			hits++
		}
	}
	return total > 0 && float64(hits) >= float64(total)*0.8
}
