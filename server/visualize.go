package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/barasalah2/chartflow/dashboard"
	"github.com/barasalah2/chartflow/dataset"
	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/helpers"
	"github.com/barasalah2/chartflow/render"
	"github.com/barasalah2/chartflow/schema"
	"github.com/barasalah2/chartflow/store"
	"github.com/barasalah2/chartflow/translator"
)

type visualizeRequest struct {
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data"`
	Specs json.RawMessage `json:"specs"`
}

type visualizeResponse struct {
	Panels []dashboard.Panel `json:"panels"`
	Rows   int               `json:"rows"`
}

// loadData resolves a JSON array of row objects. Missing or empty data
// yields an empty dataset and a nil schema.
func loadData(raw json.RawMessage) (*dataset.Dataset, *schema.Config, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return dataset.FromRecords(nil, nil), nil, nil
	}
	fields, records, err := helpers.ParseJSONRecords(trimmed)
	if err != nil {
		return nil, nil, badRequest("data: %v", err)
	}
	if len(records) == 0 || len(fields) == 0 {
		return dataset.FromRecords(nil, nil), nil, nil
	}
	ds, sch, err := helpers.LoadRecords(fields, records)
	if err != nil {
		return nil, nil, badRequest("data: %v", err)
	}
	return ds, sch, nil
}

func parseSpecs(raw json.RawMessage) ([]engine.ChartSpec, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: specs are required", translator.ErrInvalidSpecs)
	}
	return translator.ParseCustomSpecs(raw)
}

func (s *Server) compose(r *http.Request) (*visualizeRequest, []dashboard.Panel, *dataset.Dataset, error) {
	var req visualizeRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, nil, nil, err
	}
	specs, err := parseSpecs(req.Specs)
	if err != nil {
		return nil, nil, nil, err
	}
	ds, _, err := loadData(req.Data)
	if err != nil {
		return nil, nil, nil, err
	}
	panels, err := s.deps.Board.Compose(r.Context(), ds, specs)
	if err != nil {
		return nil, nil, nil, err
	}
	return &req, panels, ds, nil
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	_, panels, ds, err := s.compose(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visualizeResponse{Panels: panels, Rows: ds.Len()})
}

func (s *Server) handleVisualizeHTML(w http.ResponseWriter, r *http.Request) {
	req, panels, _, err := s.compose(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePage(w, r, req.Title, panels)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, title string, panels []dashboard.Panel) {
	if strings.TrimSpace(title) == "" {
		title = "Charts"
	}
	elements := make([]render.Element, 0, len(panels))
	for _, p := range panels {
		if p.OK() {
			elements = append(elements, *p.Element)
		}
	}
	var buf bytes.Buffer
	if err := render.WritePage(&buf, title, elements); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// ============================================================================
// AI SUGGESTIONS
// ============================================================================

type suggestRequest struct {
	Data           json.RawMessage `json:"data"`
	Message        string          `json:"message"`
	ConversationID string          `json:"conversation_id"`
}

type suggestResponse struct {
	Visualizations []engine.ChartSpec `json:"visualizations"`
	Panels         []dashboard.Panel  `json:"panels"`
	MessageID      string             `json:"message_id,omitempty"`
}

var errNoSuggester = errors.New("visualization service not configured")

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Suggester == nil {
		s.fail(w, r, upstreamError{err: errNoSuggester})
		return
	}
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	ds, sch, err := loadData(req.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ds.Len() == 0 {
		s.fail(w, r, badRequest("data: at least one row is required"))
		return
	}
	if req.ConversationID != "" && s.deps.Store != nil {
		if _, err := s.deps.Store.GetConversation(r.Context(), req.ConversationID); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	resp, err := s.deps.Suggester.Suggest(r.Context(), translator.NewRequest(ds, sch, req.Message, req.ConversationID))
	if err != nil {
		s.fail(w, r, upstreamError{err: err})
		return
	}

	out := suggestResponse{Visualizations: resp.Visualizations}
	if out.Visualizations == nil {
		out.Visualizations = []engine.ChartSpec{}
	}
	out.Panels, err = s.deps.Board.Compose(r.Context(), ds, resp.Visualizations)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if req.ConversationID != "" && s.deps.Store != nil {
		ctx := r.Context()
		if req.Message != "" {
			if _, err := s.deps.Store.AddMessage(ctx, store.Message{
				ConversationID: req.ConversationID, Role: store.RoleUser, Content: req.Message,
			}); err != nil {
				s.fail(w, r, err)
				return
			}
		}
		msg, err := s.deps.Store.AddMessage(ctx, store.Message{
			ConversationID: req.ConversationID,
			Role:           store.RoleAssistant,
			Content:        fmt.Sprintf("Suggested %d chart(s).", len(resp.Visualizations)),
			Visualizations: resp.Visualizations,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out.MessageID = msg.ID
	}
	writeJSON(w, http.StatusOK, out)
}

// ============================================================================
// CUSTOM SPECS
// ============================================================================

type validateResponse struct {
	Specs    []engine.ChartSpec `json:"specs"`
	Kinds    []engine.Kind      `json:"kinds"`
	Warnings []string           `json:"warnings,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		s.fail(w, r, err)
		return
	}
	specs, err := translator.ParseCustomSpecs(buf.Bytes())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := validateResponse{Specs: specs, Kinds: make([]engine.Kind, len(specs))}
	for i, spec := range specs {
		kind, ok := engine.ParseKind(spec.Type)
		if !ok {
			kind = engine.Bar
			out.Warnings = append(out.Warnings, fmt.Sprintf("item %d: unknown chart type %q renders as bar", i, spec.Type))
		}
		out.Kinds[i] = kind
	}
	writeJSON(w, http.StatusOK, out)
}
