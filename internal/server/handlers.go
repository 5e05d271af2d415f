// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/mindgraph/internal/generate"
	"github.com/pdiddy/mindgraph/internal/graph"
	"github.com/pdiddy/mindgraph/internal/report"
	"github.com/pdiddy/mindgraph/internal/store"
	"github.com/pdiddy/mindgraph/pkg/types"
)

type generateRequest struct {
	Topic string `json:"topic"`
	Save  bool   `json:"save"`
}

type generateResponse struct {
	MindMap types.MindMap        `json:"mindMap"`
	Record  *types.MindMapRecord `json:"record,omitempty"`
}

// handleGenerate handles POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if s.generator == nil {
		s.respondError(w, http.StatusServiceUnavailable, generate.ErrMissingAPIKey)
		return
	}

	mm, err := s.generator.Generate(r.Context(), req.Topic)
	if err != nil {
		s.metrics.generations.WithLabelValues("error").Inc()
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// Retries exhausted or an unparseable reply: the provider is at fault.
			status = http.StatusBadGateway
		}
		s.respondError(w, status, err)
		return
	}

	s.metrics.generations.WithLabelValues("ok").Inc()

	resp := generateResponse{MindMap: mm}
	if req.Save {
		rec, err := s.store.Save(r.Context(), mm, req.Topic)
		if err != nil {
			s.respondError(w, statusFor(err), err)
			return
		}
		resp.Record = &rec
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type analyzeRequest struct {
	MindMap types.MindMap `json:"mindMap"`
	UseAI   *bool         `json:"useAI"`
}

// handleAnalyze handles POST /api/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	s.analyze(w, r, req.MindMap, req.UseAI)
}

// handleAnalyzeSaved handles GET /api/mindmaps/{id}/analyze?useAI=true.
func (s *Server) handleAnalyzeSaved(w http.ResponseWriter, r *http.Request) {
	var useAI *bool
	if v := r.URL.Query().Get("useAI"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Errorf("parsing useAI: %w", err))
			return
		}
		useAI = &b
	}

	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}
	s.analyze(w, r, rec.MindMap, useAI)
}

// analyze runs the report. A nil useAI falls back to the server's
// analysis.use_ai setting.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, mm types.MindMap, useAI *bool) {
	if err := mm.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}
	opts := s.analysis
	if useAI != nil {
		opts.UseAI = *useAI
	}

	rep, err := report.Build(r.Context(), mm, opts)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.analyses.WithLabelValues(rep.Semantic.Strategy).Inc()
	s.metrics.score.Observe(rep.Consistency.Score)
	s.respondJSON(w, http.StatusOK, rep)
}

type pathRequest struct {
	MindMap  types.MindMap `json:"mindMap"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	MaxDepth int           `json:"maxDepth"`
}

type pathResponse struct {
	Shortest *graph.Path  `json:"shortest"`
	All      []graph.Path `json:"all"`
}

// handlePath handles POST /api/path. From and To are node ids.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if err := req.MindMap.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	g := graph.New(req.MindMap)
	resp := pathResponse{All: g.FindAllPaths(req.From, req.To, req.MaxDepth)}
	if p, ok := g.FindShortestPath(req.From, req.To); ok {
		resp.Shortest = &p
	}
	if resp.All == nil {
		resp.All = []graph.Path{}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleList handles GET /api/mindmaps.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.All(r.Context())
	if err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}
	s.respondJSON(w, http.StatusOK, records)
}

type saveRequest struct {
	MindMap   types.MindMap `json:"mindMap"`
	UserInput string        `json:"userInput"`
}

// handleSave handles POST /api/mindmaps.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	rec, err := s.store.Save(r.Context(), req.MindMap, req.UserInput)
	if err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

// handleGet handles GET /api/mindmaps/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

type updateRequest struct {
	MindMap types.MindMap `json:"mindMap"`
}

// handleUpdate handles PUT /api/mindmaps/{id}.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	rec, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), req.MindMap)
	if err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

// handleDelete handles DELETE /api/mindmaps/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport handles GET /api/mindmaps/export?format=json|yaml.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = store.FormatJSON
	}
	if format != store.FormatJSON && format != store.FormatYAML {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("unsupported export format %q", format))
		return
	}

	var buf bytes.Buffer
	if err := s.store.Export(r.Context(), &buf, format); err != nil {
		s.respondError(w, statusFor(err), err)
		return
	}

	contentType := "application/json"
	if format == store.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="mindmaps.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleImport handles POST /api/mindmaps/import with a JSON array body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		s.respondError(w, status, err)
		return
	}
	s.respondJSON(w, http.StatusOK, importResponse{Imported: n})
}
