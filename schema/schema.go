// Package schema discovers the column layout of a tabular dataset.
package schema

import (
	"github.com/barasalah2/chartflow/dataset"
)

// ============================================================================
// SCHEMA - Describes the shape of a dataset for the pipeline + AI translator
// ============================================================================
// Auto-discovered from raw rows (CSV, JSON records, spreadsheets).
// The translator uses column metadata to build AI prompts.
// Ingestion uses column kinds to resolve cells once into a dataset.Dataset.
// ============================================================================

// Role is the part a column usually plays in a chart.
type Role string

const (
	RoleDimension  Role = "dimension"  // grouping / category axis
	RoleMeasure    Role = "measure"    // numeric value axis
	RoleIdentifier Role = "identifier" // unique per row
	RoleText       Role = "text"       // free text, too many distinct values to group
	RoleEmpty      Role = "empty"      // no values at all
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name     string       `json:"name"`
	Columns  []ColumnMeta `json:"columns"`
	RowCount int          `json:"rowCount"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`
}

// ColumnMeta describes one column. Name is the field name exactly as it
// appears in rows; chart specs refer to columns by Name.
type ColumnMeta struct {
	Name            string       `json:"name"`
	DisplayName     string       `json:"displayName"`
	Kind            dataset.Kind `json:"kind"`
	Role            Role         `json:"role"`
	SampleValues    []string     `json:"sampleValues,omitempty"`
	UniqueCount     int          `json:"uniqueCount"`
	NullCount       int          `json:"nullCount"`
	IsTemporal      bool         `json:"isTemporal,omitempty"`
	TemporalFormat  string       `json:"temporalFormat,omitempty"`
	IsCurrencyCode  bool         `json:"isCurrencyCode,omitempty"`
	CardinalityHint string       `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
	Parent          string       `json:"parent,omitempty"`          // parent column for hierarchies
}

// DatasetColumns returns the resolved column list used for ingestion.
// Every discovered column is kept, whatever its role.
func (c Config) DatasetColumns() []dataset.Column {
	cols := make([]dataset.Column, len(c.Columns))
	for i, m := range c.Columns {
		cols[i] = dataset.Column{Name: m.Name, Kind: m.Kind}
	}
	return cols
}

// Column looks up a column by name.
func (c Config) Column(name string) (ColumnMeta, bool) {
	for _, m := range c.Columns {
		if m.Name == name {
			return m, true
		}
	}
	return ColumnMeta{}, false
}

// DimensionNames returns all dimension column names.
func (c Config) DimensionNames() []string {
	return c.namesWithRole(RoleDimension)
}

// MeasureNames returns all measure column names.
func (c Config) MeasureNames() []string {
	return c.namesWithRole(RoleMeasure)
}

// TemporalNames returns columns that hold dates or date-like buckets.
func (c Config) TemporalNames() []string {
	var out []string
	for _, m := range c.Columns {
		if m.IsTemporal {
			out = append(out, m.Name)
		}
	}
	return out
}

func (c Config) namesWithRole(role Role) []string {
	var out []string
	for _, m := range c.Columns {
		if m.Role == role {
			out = append(out, m.Name)
		}
	}
	return out
}
