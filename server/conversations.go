package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/barasalah2/chartflow/engine"
	"github.com/barasalah2/chartflow/store"
)

// ============================================================================
// CONVERSATIONS
// ============================================================================

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	list, err := s.deps.Store.ListConversations(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": list})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.deps.Store.CreateConversation(r.Context(), req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Store.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRenameConversation(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Title == "" {
		s.fail(w, r, badRequest("title is required"))
		return
	}
	c, err := s.deps.Store.RenameConversation(r.Context(), r.PathValue("id"), req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteConversation(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// MESSAGES
// ============================================================================

type messageRequest struct {
	Role           store.Role         `json:"role"`
	Content        string             `json:"content"`
	Visualizations []engine.ChartSpec `json:"visualizations"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.deps.Store.ListMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		s.fail(w, r, badRequest("unknown role %q", req.Role))
		return
	}
	msg, err := s.deps.Store.AddMessage(r.Context(), store.Message{
		ConversationID: r.PathValue("id"),
		Role:           req.Role,
		Content:        req.Content,
		Visualizations: req.Visualizations,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ============================================================================
// SAVED CHARTS
// ============================================================================

type chartRequest struct {
	Title    string           `json:"title"`
	Specs    json.RawMessage  `json:"specs"`
	Data     []map[string]any `json:"data"`
	Metadata map[string]any   `json:"metadata"`
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := s.deps.Store.ListCharts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"charts": charts})
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	specs, err := parseSpecs(req.Specs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(specs) == 0 {
		s.fail(w, r, badRequest("at least one spec is required"))
		return
	}
	chart, err := s.deps.Store.SaveChart(r.Context(), store.SavedChart{
		ConversationID: r.PathValue("id"),
		Title:          req.Title,
		Specs:          specs,
		Data:           req.Data,
		Metadata:       req.Metadata,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, chart)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.deps.Store.GetChart(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteChart(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChartHTML re-renders a saved chart from its stored data.
func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	chart, err := s.deps.Store.GetChart(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	raw, err := json.Marshal(chart.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ds, _, err := loadData(raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	panels, err := s.deps.Board.Compose(r.Context(), ds, chart.Specs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePage(w, r, chart.Title, panels)
}
