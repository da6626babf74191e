package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/schema"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads one sheet of a workbook. The first non-empty row is the
// header. An empty sheet name selects the first sheet.
func ParseXLSX(r io.Reader, sheet string) (*dataset.Dataset, *schema.Config, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	headers := rows[start]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	var body [][]string
	for _, row := range rows[start+1:] {
		if !isBlankRow(row) {
			body = append(body, row)
		}
	}

	sch, err := schema.DiscoverFromRows(headers, body, schema.DiscoverOptions{Name: sheet})
	if err != nil {
		return nil, nil, err
	}
	sch.DiscoveredFrom = "XLSX"
	return fromRows(headers, body, sch), sch, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// LoadFile picks a loader by file extension (.csv, .json, .xlsx).
func LoadFile(path string) (*dataset.Dataset, *schema.Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return ParseXLSX(f, "")
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return ParseJSON(data)
	case ".csv", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return ParseCSVAuto(data)
	default:
		return nil, nil, fmt.Errorf("unsupported data file %q", path)
	}
}
