package translator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/schema"
)

func sampleView(t *testing.T, n int) (*dataset.Dataset, *schema.Config) {
	t.Helper()
	records := make([]map[string]any, n)
	for i := range records {
		status := "Open"
		if i%2 == 0 {
			status = "Done"
		}
		records[i] = map[string]any{"status": status, "hours": float64(i) + 0.5}
	}
	sch, err := schema.DiscoverFromRecords([]string{"status", "hours"}, records)
	require.NoError(t, err)
	return dataset.FromRecords(sch.DatasetColumns(), records), sch
}

// ============================================================================
// REQUEST + PROMPT
// ============================================================================

func TestNewRequestCapsSnippet(t *testing.T) {
	ds, sch := sampleView(t, 25)
	req := NewRequest(ds, sch, "show status", "conv-1")

	assert.Equal(t, 25, req.TotalRows)
	assert.Len(t, req.DataSnippet, SnippetRows)
	require.Len(t, req.Columns, 2)
	assert.Equal(t, "status", req.Columns[0].Name)
	assert.Equal(t, "number", req.Columns[1].Kind)
	assert.Equal(t, "measure", req.Columns[1].Role)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data_snippet"`)
	assert.Contains(t, string(body), `"total_rows":25`)
	assert.Contains(t, string(body), `"conversation_id":"conv-1"`)
}

func TestNewRequestSmallDataset(t *testing.T) {
	ds, _ := sampleView(t, 3)
	req := NewRequest(ds, nil, "", "")
	assert.Len(t, req.DataSnippet, 3)
	assert.Empty(t, req.Columns[0].Role)
}

func TestBuildPrompt(t *testing.T) {
	ds, sch := sampleView(t, 4)
	prompt := BuildPrompt(NewRequest(ds, sch, "what is done?", ""))

	assert.Contains(t, prompt, "stacked_bar")
	assert.Contains(t, prompt, "date_group:year|quarter|month|day")
	assert.Contains(t, prompt, "  - hours (number, measure)")
	assert.Contains(t, prompt, "FIRST 4 ROWS:")
	assert.Contains(t, prompt, "USER MESSAGE: what is done?")
	assert.Contains(t, prompt, `"aggregation"`)
}

// ============================================================================
// RESPONSE PARSING
// ============================================================================

func TestParseResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"visualizations":[{"type":"pie","x":"status","aggregation":"count"}]}`},
		{"encoded string", `"{\"visualizations\":[{\"type\":\"pie\",\"x\":\"status\",\"aggregation\":\"count\"}]}"`},
		{"fenced", "Here you go:\n```json\n{\"visualizations\":[{\"type\":\"pie\",\"x\":\"status\",\"aggregation\":\"count\"}]}\n```"},
		{"bare array", `[{"type":"pie","x":"status","aggregation":"count"}]`},
		{"visualizations as string", `{"visualizations":"[{\"type\":\"pie\",\"x\":\"status\",\"aggregation\":\"count\"}]"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, resp.Visualizations, 1)
			spec := resp.Visualizations[0]
			assert.Equal(t, "pie", spec.Type)
			assert.Equal(t, "status", spec.X)
			assert.Equal(t, engine.AggCount, spec.Aggregation)
		})
	}
}

func TestParseResponseDropsUntypedAndEmpty(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"visualizations":[{"x":"a"},{"type":"bar","x":"a"}]}`))
	require.NoError(t, err)
	require.Len(t, resp.Visualizations, 1)
	assert.Equal(t, "bar", resp.Visualizations[0].Type)

	resp, err = ParseResponse([]byte(`{"visualizations":null}`))
	require.NoError(t, err)
	assert.Empty(t, resp.Visualizations)

	_, err = ParseResponse([]byte("   "))
	assert.Error(t, err)
	_, err = ParseResponse([]byte("no json here"))
	assert.Error(t, err)
}

func TestParseCustomSpecs(t *testing.T) {
	specs, err := ParseCustomSpecs([]byte(`[{"type":"bar","x":"status","y":"hours","aggregation":"sum","filters":{"status":["Done"]}}]`))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, engine.AggSum, specs[0].Aggregation)
	assert.Equal(t, []string{"Done"}, specs[0].Filters["status"])

	bad := map[string]string{
		"object":     `{"type":"bar"}`,
		"null":       `null`,
		"not json":   `[{"type":`,
		"scalar":     `["bar"]`,
		"no type":    `[{"type":"bar"},{"x":"status"}]`,
		"blank type": `[{"type":"  "}]`,
	}
	for name, doc := range bad {
		_, err := ParseCustomSpecs([]byte(doc))
		assert.True(t, errors.Is(err, ErrInvalidSpecs), name)
	}

	_, err = ParseCustomSpecs([]byte(`[{"type":"bar"},{"x":"status"}]`))
	assert.ErrorContains(t, err, "item 1")

	_, err = ParseCustomSpecs([]byte(` null `))
	assert.ErrorContains(t, err, "expected a JSON array")

	empty, err := ParseCustomSpecs([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// ============================================================================
// SERVICES
// ============================================================================

func TestHTTPServiceSuggest(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"visualizations":[{"type":"bar","x":"status","aggregation":"count"}]}`)
	}))
	defer srv.Close()

	ds, sch := sampleView(t, 4)
	svc := NewHTTPService(Config{Endpoint: srv.URL, APIKey: "secret"}, zaptest.NewLogger(t))
	resp, err := svc.Suggest(context.Background(), NewRequest(ds, sch, "status please", "c1"))
	require.NoError(t, err)
	require.Len(t, resp.Visualizations, 1)
	assert.Equal(t, "status please", got.Message)
	assert.Equal(t, 4, got.TotalRows)
}

func TestHTTPServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewHTTPService(Config{Endpoint: srv.URL}, nil)
	_, err := svc.Suggest(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")

	_, err = NewHTTPService(Config{}, nil).Suggest(context.Background(), Request{})
	assert.ErrorContains(t, err, "no endpoint")
}

func TestGeminiServiceSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, ":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"visualizations\":[{\"type\":\"line\",\"x\":\"created\",\"transform_x\":\"date_group:month\"}]}"}]}}]}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := NewGemini(ctx, Config{APIKey: "k", Endpoint: srv.URL}, zaptest.NewLogger(t))
	require.NoError(t, err)

	resp, err := svc.Suggest(ctx, Request{Message: "trend"})
	require.NoError(t, err)
	require.Len(t, resp.Visualizations, 1)
	assert.Equal(t, "line", resp.Visualizations[0].Type)
	assert.Equal(t, "date_group:month", resp.Visualizations[0].TransformX)
}

func TestNewSuggester(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Endpoint: "http://localhost:1"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPService{}, s)

	s, err = New(ctx, Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiService{}, s)

	_, err = New(ctx, Config{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)

	_, err = New(ctx, Config{Provider: "gemini"}, nil)
	assert.ErrorContains(t, err, "api key")
}
