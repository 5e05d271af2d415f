// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes generation, analysis and the saved mind maps over
// a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/mindgraph/internal/generate"
	"github.com/pdiddy/mindgraph/internal/report"
	"github.com/pdiddy/mindgraph/internal/store"
	"github.com/pdiddy/mindgraph/pkg/types"
)

// Generator produces a mind map from a topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (types.MindMap, error)
}

// Store is the subset of the mind map store the API needs.
type Store interface {
	All(ctx context.Context) ([]types.MindMapRecord, error)
	Get(ctx context.Context, id string) (types.MindMapRecord, error)
	Save(ctx context.Context, mm types.MindMap, userInput string) (types.MindMapRecord, error)
	Update(ctx context.Context, id string, mm types.MindMap) (types.MindMapRecord, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, r io.Reader) (int, error)
	Export(ctx context.Context, w io.Writer, format string) error
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server holds the collaborators behind the HTTP API.
type Server struct {
	store     Store
	generator Generator
	analysis  report.Options
	logger    *zap.Logger
	origins   []string
	metrics   *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins allowed to call the API.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New returns a Server. analysis supplies the defaults for every analyze
// request; a request may still turn UseAI on.
func New(st Store, gen Generator, analysis report.Options, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	analysis.Logger = logger
	s := &Server{
		store:     st,
		generator: gen,
		analysis:  analysis,
		logger:    logger,
		metrics:   newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.instrument)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/path", s.handlePath)

		r.Route("/mindmaps", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleSave)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
			r.Get("/{id}", s.handleGet)
			r.Put("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleDelete)
			r.Get("/{id}/analyze", s.handleAnalyzeSaved)
		})
	})
	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var se *generate.StatusError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidMindMap), errors.Is(err, generate.ErrEmptyTopic):
		return http.StatusBadRequest
	case errors.Is(err, generate.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
