// Package server exposes chart composition, AI suggestions and persistence
// over a JSON HTTP API.
//
// Routes:
//
//	POST   /api/visualize                      → panels for {data, specs}
//	POST   /api/visualize/html                 → HTML page for {data, specs}
//	POST   /api/suggest                        → AI specs (+ panels) for {data, message}
//	POST   /api/specs/validate                 → validated custom chart JSON
//	GET    /api/conversations                  → list
//	POST   /api/conversations                  → create
//	GET    /api/conversations/{id}             → one conversation
//	PATCH  /api/conversations/{id}             → rename
//	DELETE /api/conversations/{id}             → soft delete
//	GET    /api/conversations/{id}/messages    → messages
//	POST   /api/conversations/{id}/messages    → append a message
//	GET    /api/conversations/{id}/charts      → saved charts
//	POST   /api/conversations/{id}/charts      → save a chart
//	GET    /api/charts/{id}                    → one saved chart
//	DELETE /api/charts/{id}                    → soft delete
//	GET    /api/charts/{id}/html               → saved chart as an HTML page
//	GET    /healthz                            → liveness
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/barasalah2/chartflow/dashboard"
	"github.com/barasalah2/chartflow/store"
	"github.com/barasalah2/chartflow/translator"
)

// Config controls server startup.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// Deps are the collaborators the handlers use. Suggester may be nil, in
// which case /api/suggest reports the service as unavailable. Without a
// Store the persistence routes are not registered.
type Deps struct {
	Store     store.Store
	Board     *dashboard.Board
	Suggester translator.Suggester
	Logger    *zap.Logger
}

// Server wraps http.Server with the chartflow routes.
type Server struct {
	cfg    Config
	deps   Deps
	mux    *http.ServeMux
	logger *zap.Logger
}

// New constructs a Server with routes.
func New(cfg Config, deps Deps) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Board == nil {
		deps.Board = dashboard.New(dashboard.WithLogger(deps.Logger))
	}
	s := &Server{cfg: cfg, deps: deps, mux: http.NewServeMux(), logger: deps.Logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/visualize", s.handleVisualize)
	s.mux.HandleFunc("POST /api/visualize/html", s.handleVisualizeHTML)
	s.mux.HandleFunc("POST /api/suggest", s.handleSuggest)
	s.mux.HandleFunc("POST /api/specs/validate", s.handleValidate)

	if s.deps.Store == nil {
		return
	}

	s.mux.HandleFunc("GET /api/conversations", s.handleListConversations)
	s.mux.HandleFunc("POST /api/conversations", s.handleCreateConversation)
	s.mux.HandleFunc("GET /api/conversations/{id}", s.handleGetConversation)
	s.mux.HandleFunc("PATCH /api/conversations/{id}", s.handleRenameConversation)
	s.mux.HandleFunc("DELETE /api/conversations/{id}", s.handleDeleteConversation)
	s.mux.HandleFunc("GET /api/conversations/{id}/messages", s.handleListMessages)
	s.mux.HandleFunc("POST /api/conversations/{id}/messages", s.handleAddMessage)
	s.mux.HandleFunc("GET /api/conversations/{id}/charts", s.handleListCharts)
	s.mux.HandleFunc("POST /api/conversations/{id}/charts", s.handleSaveChart)

	s.mux.HandleFunc("GET /api/charts/{id}", s.handleGetChart)
	s.mux.HandleFunc("DELETE /api/charts/{id}", s.handleDeleteChart)
	s.mux.HandleFunc("GET /api/charts/{id}/html", s.handleChartHTML)
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(http.MaxBytesHandler(s.mux, s.cfg.MaxBodyBytes))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
