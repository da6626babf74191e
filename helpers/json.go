package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/schema"
)

// ParseJSONRecords decodes a JSON array of objects. Field order follows first
// appearance across rows, so charts and prompts list columns the way the
// source did.
func ParseJSONRecords(data []byte) ([]string, []map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode json rows: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, nil, fmt.Errorf("decode json rows: expected an array of objects")
	}

	var fields []string
	seen := make(map[string]bool)
	var records []map[string]any

	for i := 0; dec.More(); i++ {
		rec, keys, err := decodeObject(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("decode json row %d: %w", i, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("decode json rows: %w", err)
	}
	return fields, records, nil
}

func decodeObject(dec *json.Decoder) (map[string]any, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("not an object")
	}

	rec := make(map[string]any)
	var keys []string
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := t.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := rec[key]; !dup {
			keys = append(keys, key)
		}
		rec[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return rec, keys, nil
}

// ParseJSON decodes a JSON array of objects and discovers its schema.
func ParseJSON(data []byte) (*dataset.Dataset, *schema.Config, error) {
	fields, records, err := ParseJSONRecords(data)
	if err != nil {
		return nil, nil, err
	}
	return LoadRecords(fields, records)
}

// LoadRecords discovers a schema for already decoded records and resolves
// them into a Dataset.
func LoadRecords(fields []string, records []map[string]any) (*dataset.Dataset, *schema.Config, error) {
	sch, err := schema.DiscoverFromRecords(fields, records)
	if err != nil {
		return nil, nil, err
	}
	return dataset.FromRecords(sch.DatasetColumns(), records), sch, nil
}
