package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/barasalah2/chartflow/engine"
)

// ============================================================================
// RESPONSE PARSER - Extracts chart specs from AI output
// ============================================================================
// Services answer with {"visualizations": [...]} either as an object or as
// a JSON-encoded string, sometimes wrapped in a markdown fence or prose.
// ============================================================================

// ErrInvalidSpecs marks custom chart JSON that cannot be used.
var ErrInvalidSpecs = errors.New("invalid chart specs")

// ParseResponse extracts the visualizations from a service reply.
func ParseResponse(body []byte) (*Response, error) {
	text := extractJSON(string(body))
	if text == "" {
		return nil, fmt.Errorf("parse response: empty body")
	}

	// JSON-encoded string: decode once and parse the inner document
	if strings.HasPrefix(text, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		text = extractJSON(inner)
	}

	// A bare array is accepted as the visualizations list
	if strings.HasPrefix(text, "[") {
		specs, err := decodeSpecs([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		return &Response{Visualizations: specs}, nil
	}

	var envelope struct {
		Visualizations json.RawMessage `json:"visualizations"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("parse response: %w (response: %.200s)", err, text)
	}
	raw := bytes.TrimSpace(envelope.Visualizations)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &Response{Visualizations: []engine.ChartSpec{}}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("parse visualizations: %w", err)
		}
		raw = []byte(extractJSON(inner))
	}
	specs, err := decodeSpecs(raw)
	if err != nil {
		return nil, fmt.Errorf("parse visualizations: %w", err)
	}
	return &Response{Visualizations: specs}, nil
}

func decodeSpecs(raw []byte) ([]engine.ChartSpec, error) {
	var specs []engine.ChartSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, err
	}
	out := specs[:0]
	for _, s := range specs {
		if strings.TrimSpace(s.Type) != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// ParseCustomSpecs validates user-supplied chart JSON: the document must be
// an array and every item an object with a non-empty string type. Errors
// wrap ErrInvalidSpecs and name the offending index.
func ParseCustomSpecs(data []byte) ([]engine.ChartSpec, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: expected a JSON array of chart specs", ErrInvalidSpecs)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpecs, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array of chart specs", ErrInvalidSpecs)
	}

	specs := make([]engine.ChartSpec, 0, len(items))
	for i, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrInvalidSpecs, i)
		}
		typ, _ := fields["type"].(string)
		if strings.TrimSpace(typ) == "" {
			return nil, fmt.Errorf("%w: item %d has no type", ErrInvalidSpecs, i)
		}
		var spec engine.ChartSpec
		if err := json.Unmarshal(item, &spec); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidSpecs, i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// extractJSON strips markdown fences and surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[\"") {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		s = strings.TrimSpace(body)
	}
	if s == "" || strings.ContainsAny(s[:1], "{[\"") {
		return s
	}
	open := strings.IndexAny(s, "{[")
	if open < 0 {
		return s
	}
	closeCh := "}"
	if s[open] == '[' {
		closeCh = "]"
	}
	end := strings.LastIndex(s, closeCh)
	if end <= open {
		return s
	}
	return s[open : end+1]
}
