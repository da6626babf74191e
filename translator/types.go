package translator

import (
	"context"
	"time"

	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/schema"
)

// ============================================================================
// TRANSLATOR - AI boundary for chat message + dataset → chart specs
// ============================================================================
// A Suggester is the ONLY component that calls an external AI service.
// It receives column metadata, the first rows and the user's message, and
// returns ChartSpecs. One request per user action, no retry.
// ============================================================================

// SnippetRows is how many leading rows are sent with a request.
const SnippetRows = 10

// Suggester asks an AI visualization service for chart specs.
// Implementations: HTTPService (generic endpoint), GeminiService.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (*Response, error)
}

// ColumnInfo describes one column to the service.
type ColumnInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind,omitempty"`
	Role    string   `json:"role,omitempty"`
	Samples []string `json:"samples,omitempty"`
}

// Request is the body sent to the visualization service.
type Request struct {
	Columns        []ColumnInfo     `json:"columns"`
	DataSnippet    []map[string]any `json:"data_snippet"`
	TotalRows      int              `json:"total_rows"`
	Message        string           `json:"message,omitempty"`
	ConversationID string           `json:"conversation_id,omitempty"`
}

// Response carries the suggested specs.
type Response struct {
	Visualizations []engine.ChartSpec `json:"visualizations"`
}

// NewRequest builds a request from a dataset. sch is optional; when given,
// column kinds, roles and sample values come from it.
func NewRequest(view dataset.View, sch *schema.Config, message, conversationID string) Request {
	cols := view.Columns()
	req := Request{
		Columns:        make([]ColumnInfo, 0, len(cols)),
		DataSnippet:    dataset.Records(view, SnippetRows),
		TotalRows:      view.Len(),
		Message:        message,
		ConversationID: conversationID,
	}
	for _, c := range cols {
		info := ColumnInfo{Name: c.Name, Kind: c.Kind.String()}
		if sch != nil {
			if m, ok := sch.Column(c.Name); ok {
				info.Role = string(m.Role)
				info.Samples = m.SampleValues
			}
		}
		req.Columns = append(req.Columns, info)
	}
	return req
}

// Config holds translator configuration.
type Config struct {
	Provider string        `yaml:"provider"` // "http" or "gemini"
	Endpoint string        `yaml:"endpoint"` // service URL (http) or API base URL override (gemini)
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultGeminiConfig returns a Config with sensible Gemini defaults.
func DefaultGeminiConfig(apiKey string) Config {
	return Config{
		Provider: "gemini",
		APIKey:   apiKey,
		Model:    "gemini-2.5-flash",
		Timeout:  60 * time.Second,
	}
}
