package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/rulebook"
	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes bounds the size of request bodies.
const MaxBodyBytes = 4 << 20

// Server exposes an Evaluator over HTTP.
type Server struct {
	Engine  ports.Evaluator
	Logger  *slog.Logger
	Metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics (typically promhttp.Handler()).
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Evaluator, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(server.logRequests)

	r.Post("/evaluate", server.Evaluate)
	r.Post("/check", server.Check)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// EvaluateResponse wraps the report of POST /evaluate.
type EvaluateResponse struct {
	Payloads []any          `json:"payloads"`
	Report   *domain.Report `json:"report"`
}

// Evaluate handles POST /evaluate with a body of the form
// {"rules": [...], "vals": [...]}.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	book, err := compiler.RuleBookFromDocument("http", doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	facts, err := compiler.FactSetFromDocument(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.Engine.Run(r.Context(), book, facts)
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		s.Logger.Warn("Evaluate failed", "err", err, "status", status)
	}
	if report == nil {
		writeError(w, status, err)
		return
	}
	payloads := report.Payloads()
	if payloads == nil {
		payloads = []any{}
	}
	writeJSON(w, status, EvaluateResponse{Payloads: payloads, Report: report})
}

// CheckResponse is the body returned by POST /check.
type CheckResponse struct {
	Result bool          `json:"result"`
	Trace  *domain.Trace `json:"trace,omitempty"`
}

// Check handles POST /check with a body of the form {"cond": ..., "vals": [...]}.
// With ?explain=true the evaluation trace is included.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	obj, isObj := doc.(map[string]any)
	if !isObj {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: expected an object", domain.ErrMalformedDocument))
		return
	}
	cond, hasCond := obj[domain.KeyCond]
	if !hasCond {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: missing %q", domain.ErrMalformedDocument, domain.KeyCond))
		return
	}
	facts, err := compiler.FactSetFromDocument(obj)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	explain, _ := strconv.ParseBool(r.URL.Query().Get("explain"))
	if explain {
		trace, err := s.Engine.Explain(cond, facts)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, CheckResponse{Result: trace.Result, Trace: trace})
		return
	}

	result, err := s.Engine.Check(cond, facts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Result: result})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "rulebook-http",
		"version": strings.TrimSpace(rulebook.Version),
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return nil, false
	}
	if len(data) > MaxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes))
		return nil, false
	}
	doc, err := compiler.DecodeDocument(data, compiler.FormatJSON)
	if err != nil {
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return doc, true
}

// statusFor maps evaluation errors to HTTP statuses: structural problems in
// rules are the client's (422), cancellations are 503, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedNode), errors.Is(err, domain.ErrMalformedRule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMalformedDocument):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
