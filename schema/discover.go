package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/barasalah2/chartflow/dataset"
)

// ============================================================================
// AUTO-DISCOVERY - Heuristic Column Classification
// ============================================================================
// Inspects raw rows and generates a schema.Config automatically.
//
// Classification pipeline per column:
//   1. Sample values → detect kind (number, date, bool, string)
//   2. Kind + cardinality → classify role (dimension, measure, identifier, text)
//   3. Pattern matching → detect special types (currency code, temporal)
//   4. Cross-column pass → detect parent/child hierarchies between dimensions
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force identifier/text columns back to dimensions
	Name           string   // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverFromCSV generates a schema.Config by inspecting CSV data.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv headers: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	config, err := DiscoverFromRows(headers, rows, opts...)
	if err != nil {
		return nil, err
	}
	config.DiscoveredFrom = "CSV"
	return config, nil
}

// DiscoverFromRecords inspects loosely typed records (decoded JSON).
// fields fixes the column order; records may omit any field.
func DiscoverFromRecords(fields []string, records []map[string]any, opts ...DiscoverOptions) (*Config, error) {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = stringify(rec[f])
		}
		rows[i] = row
	}
	config, err := DiscoverFromRows(fields, rows, opts...)
	if err != nil {
		return nil, err
	}
	config.DiscoveredFrom = "JSON"
	return config, nil
}

// DiscoverFromRows classifies every header column using the given string rows.
func DiscoverFromRows(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset has no data rows")
	}

	sample := rows
	if opt.SampleSize > 0 && len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}

	recoverSet := make(map[string]bool)
	for _, col := range opt.RecoverColumns {
		recoverSet[strings.ToLower(col)] = true
	}

	columns := make([]columnAnalysis, len(headers))
	for i, header := range headers {
		columns[i] = analyzeColumn(strings.TrimSpace(header), i, sample)
		if recoverSet[strings.ToLower(columns[i].name)] {
			columns[i].recover()
		}
	}

	detectHierarchies(columns, sample)

	config := &Config{
		Name:         opt.Name,
		RowCount:     len(rows),
		DiscoveredAt: time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}
	for _, col := range columns {
		config.Columns = append(config.Columns, col.toMeta())
	}
	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnAnalysis struct {
	name  string
	index int
	kind  dataset.Kind
	role  Role

	// Stats
	uniqueCount int
	totalCount  int
	nullCount   int
	sampleVals  []string

	// Special type detection
	isTemporal      bool
	temporalFormat  string
	isCurrencyCode  bool
	hasDecimals     bool
	cardinalityHint string
	parent          string
}

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(name string, index int, rows [][]string) columnAnalysis {
	col := columnAnalysis{
		name:       name,
		index:      index,
		kind:       dataset.String,
		totalCount: len(rows),
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)

	for _, row := range rows {
		val := cellAt(row, index)
		if isNullText(val) {
			col.nullCount++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.role = RoleEmpty
		col.cardinalityHint = "low"
		return col
	}

	col.sampleVals = collectSamples(uniqueSet, 10)
	col.kind = detectKind(values)

	if col.kind == dataset.Number {
		for _, v := range values {
			if strings.Contains(v, ".") {
				col.hasDecimals = true
				break
			}
		}
	}

	switch col.kind {
	case dataset.String:
		col.isCurrencyCode = detectCurrencyCodes(col.sampleVals)
		col.isTemporal, col.temporalFormat = detectTemporalPattern(col.sampleVals)
	case dataset.Date:
		col.isTemporal = true
		_, col.temporalFormat = detectTemporalPattern(col.sampleVals)
	}

	col.classifyRole()

	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	return col
}

// classifyRole determines dimension vs measure vs identifier/text.
func (col *columnAnalysis) classifyRole() {
	nonNull := col.totalCount - col.nullCount

	switch col.kind {
	case dataset.Number:
		if col.uniqueCount == nonNull && nonNull > 10 && !col.hasDecimals {
			// Every value unique → likely an ID
			col.role = RoleIdentifier
			return
		}
		if col.hasDecimals {
			col.role = RoleMeasure
			return
		}
		// Few unique values at a low ratio → coded dimension (priority 1-5)
		uniqueRatio := float64(col.uniqueCount) / float64(col.totalCount)
		if col.uniqueCount < 20 && uniqueRatio < 0.3 {
			col.role = RoleDimension
			if ok, format := detectTemporalPattern(col.sampleVals); ok {
				col.isTemporal, col.temporalFormat = true, format
			}
			return
		}
		col.role = RoleMeasure

	case dataset.Date, dataset.Bool:
		col.role = RoleDimension

	default:
		if col.uniqueCount == nonNull && nonNull > 10 {
			col.role = RoleIdentifier
			return
		}
		if col.uniqueCount > col.totalCount/2 && col.uniqueCount > 50 {
			col.role = RoleText
			return
		}
		col.role = RoleDimension
	}
}

// recover forces an identifier or free-text column back to a dimension.
func (col *columnAnalysis) recover() {
	if col.role == RoleIdentifier || col.role == RoleText {
		col.role = RoleDimension
	}
}

func (col *columnAnalysis) toMeta() ColumnMeta {
	return ColumnMeta{
		Name:            col.name,
		DisplayName:     toDisplayName(col.name),
		Kind:            col.kind,
		Role:            col.role,
		SampleValues:    col.sampleVals,
		UniqueCount:     col.uniqueCount,
		NullCount:       col.nullCount,
		IsTemporal:      col.isTemporal,
		TemporalFormat:  col.temporalFormat,
		IsCurrencyCode:  col.isCurrencyCode,
		CardinalityHint: col.cardinalityHint,
		Parent:          col.parent,
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectKind requires 80%+ of non-null values to match for number/date/bool.
func detectKind(values []string) dataset.Kind {
	if len(values) == 0 {
		return dataset.String
	}

	numCount := 0
	dateCount := 0
	boolCount := 0

	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if _, ok := dataset.ParseDate(v); ok {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)

	if boolCount >= threshold && !allDigits(values) {
		return dataset.Bool
	}
	if dateCount >= threshold {
		return dataset.Date
	}
	if numCount >= threshold {
		return dataset.Number
	}
	return dataset.String
}

// isNumeric is stricter than dataset.ParseNumber: only currency prefixes,
// thousands separators and a trailing percent sign are tolerated, so codes
// like "PROJ-101" stay text.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no" || s == "1" || s == "0"
}

// allDigits is true for 0/1 columns, which read better as numbers.
func allDigits(values []string) bool {
	for _, v := range values {
		if v != "0" && v != "1" {
			return false
		}
	}
	return true
}

func isNullText(s string) bool {
	switch s {
	case "", "null", "NULL", "N/A", "n/a", "undefined":
		return true
	}
	return false
}

// ============================================================================
// SPECIAL PATTERN DETECTION
// ============================================================================

// Known ISO 4217 currency codes (common subset).
var knownCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CNY": true,
	"INR": true, "SGD": true, "AUD": true, "CAD": true, "CHF": true,
	"HKD": true, "NZD": true, "SEK": true, "KRW": true, "NOK": true,
	"MXN": true, "BRL": true, "ZAR": true, "THB": true, "MYR": true,
	"IDR": true, "PHP": true, "VND": true, "TWD": true, "AED": true,
	"SAR": true, "QAR": true, "PLN": true, "CZK": true, "ILS": true,
	"DKK": true, "RUB": true, "TRY": true, "ARS": true, "CLP": true,
	"COP": true, "PEN": true, "EGP": true, "NGN": true, "KES": true,
}

// detectCurrencyCodes checks if sample values are ISO currency codes.
func detectCurrencyCodes(samples []string) bool {
	if len(samples) == 0 {
		return false
	}
	matches := 0
	for _, s := range samples {
		if knownCurrencies[strings.TrimSpace(s)] {
			matches++
		}
	}
	return matches > 0 && float64(matches)/float64(len(samples)) >= 0.8
}

var temporalPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`), "yyyy-MM-dd"},      // 2026-01-15
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"},     // Jan-2026
	{regexp.MustCompile(`^[A-Z][a-z]{2} \d{4}$`), "MMM yyyy"},     // Jan 2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},              // 2026-01
	{regexp.MustCompile(`^\d{4}-Q[1-4]$`), "yyyy-QN"},             // 2026-Q1
	{regexp.MustCompile(`^Q[1-4][-\s]\d{4}$`), "QN-yyyy"},         // Q1-2026
	{regexp.MustCompile(`^(19|20)\d{2}$`), "yyyy"},                // 2026
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},      // January 2026
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), "MM/dd/yyyy"}, // 01/15/2026
}

// detectTemporalPattern checks if values match known date/month/quarter patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}

	for _, pattern := range temporalPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}

	return false, ""
}

// ============================================================================
// HIERARCHY DETECTION
// ============================================================================

// detectHierarchies finds parent/child relationships between dimensions.
// If every value of B maps to exactly one value of A, and A has fewer unique
// values, then A is parent of B. The closest (highest cardinality) valid
// parent wins. Children that are unique per row are skipped: every column
// would trivially qualify as their parent.
func detectHierarchies(columns []columnAnalysis, rows [][]string) {
	for i := range columns {
		child := &columns[i]
		if child.role != RoleDimension || child.uniqueCount >= child.totalCount-child.nullCount {
			continue
		}

		bestParent := ""
		bestParentUniques := 0

		for j := range columns {
			parent := columns[j]
			if i == j || parent.role != RoleDimension {
				continue
			}
			if parent.uniqueCount >= child.uniqueCount {
				continue
			}
			if !mapsUniquely(rows, child.index, parent.index) {
				continue
			}
			if parent.uniqueCount > bestParentUniques {
				bestParent = parent.name
				bestParentUniques = parent.uniqueCount
			}
		}

		child.parent = bestParent
	}
}

// mapsUniquely reports whether every child value pairs with a single parent.
func mapsUniquely(rows [][]string, childIdx, parentIdx int) bool {
	childToParent := make(map[string]string)
	for _, row := range rows {
		child := cellAt(row, childIdx)
		parent := cellAt(row, parentIdx)
		if isNullText(child) || isNullText(parent) {
			continue
		}
		if existing, ok := childToParent[child]; ok {
			if existing != parent {
				return false
			}
			continue
		}
		childToParent[child] = parent
	}
	return len(childToParent) > 1
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toDisplayName cleans a header for human display.
// "story_points" → "Story Points", "assignee" → "Assignee"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
