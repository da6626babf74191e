// Package helpers loads raw CSV, JSON and spreadsheet data into typed
// datasets.
package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/schema"
)

// ============================================================================
// CSV HELPER - Parses CSV data into a *dataset.Dataset
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, upload, object store).
// This helper resolves the raw cells once using the schema's column kinds.
// ============================================================================

// ParseCSV parses CSV bytes into a Dataset using sch for column kinds.
// Columns missing from sch are read as strings.
func ParseCSV(data []byte, sch *schema.Config) (*dataset.Dataset, error) {
	headers, rows, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	return fromRows(headers, rows, sch), nil
}

// ParseCSVAuto parses CSV without a pre-existing schema.
// Returns the dataset and the discovered schema.
func ParseCSVAuto(data []byte) (*dataset.Dataset, *schema.Config, error) {
	headers, rows, err := readCSV(data)
	if err != nil {
		return nil, nil, err
	}
	sch, err := schema.DiscoverFromRows(headers, rows)
	if err != nil {
		return nil, nil, err
	}
	sch.DiscoveredFrom = "CSV"
	return fromRows(headers, rows, sch), sch, nil
}

func readCSV(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
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
	return headers, rows, nil
}

// fromRows resolves string rows by header position.
func fromRows(headers []string, rows [][]string, sch *schema.Config) *dataset.Dataset {
	cols := make([]dataset.Column, len(headers))
	for i, h := range headers {
		cols[i] = dataset.Column{Name: h, Kind: dataset.String}
		if sch == nil {
			continue
		}
		if meta, ok := sch.Column(h); ok {
			cols[i].Kind = meta.Kind
		}
	}
	return dataset.FromStrings(cols, rows)
}
