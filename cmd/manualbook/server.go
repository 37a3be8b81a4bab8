package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	manualbook "github.com/RaymonMudrig/ManualBook"
	"github.com/RaymonMudrig/ManualBook/core"
)

type server struct {
	engine *manualbook.Engine
	router chi.Router
	logger *slog.Logger
}

type queryRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k,omitempty"`
	Threshold float32 `json:"threshold,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newServer(engine *manualbook.Engine, logger *slog.Logger) *server {
	s := &server{
		engine: engine,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.handleHealth)
	r.Post("/api/query", s.handleQuery)
	r.Post("/api/classify", s.handleClassify)

	s.router = r
	return s
}

func (s *server) listen(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if gen := s.engine.CurrentGeneration(); gen != nil {
		status["articles"] = gen.Catalog().Len()
		status["built_at"] = gen.BuiltAt()
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	resp, err := s.engine.HandleQuery(r.Context(), req.Query, manualbook.QueryOptions{
		TopK:          req.TopK,
		MinSimilarity: req.Threshold,
	})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	classification, err := s.engine.ClassifyQuery(r.Context(), req.Query)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, classification)
}

// writeQueryError maps query validation failures to 400 and everything
// else to 500. Pipeline-level faults never surface here; they degrade
// inside the engine.
func (s *server) writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrEmptyQuery) || errors.Is(err, core.ErrQueryTooLong) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Error("query failed", "err", err)
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("error encoding response", "err", err)
	}
}
