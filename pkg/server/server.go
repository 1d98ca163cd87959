// Package server exposes the parser and linter over HTTP.
//
// # Endpoints
//
//	GET  /healthz   liveness probe
//	POST /v1/parse  parse a manifest body, return the requirement list
//	POST /v1/lint   lint a manifest body, return findings
//
// Request bodies are either raw requirement text or a JSON object:
//
//	{"filename": "requirements.txt", "content": "requests>=2.28\n"}
//
// The JSON form can also carry lint configuration. Includes (-r/-c)
// cannot be resolved server-side and surface as include-missing findings.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/pinfold/pinfold/pkg/errors"
	"github.com/pinfold/pinfold/pkg/lint"
	"github.com/pinfold/pinfold/pkg/manifest"
)

// Config holds server settings.
type Config struct {
	Addr         string      // listen address, e.g. ":8080"
	Lint         lint.Config // applied to /v1/lint requests without their own config
	MaxBodyBytes int64       // request body limit; 0 means 1 MiB
}

// Server is the HTTP API server.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a Server. The logger must not be nil.
func New(cfg Config, logger *log.Logger) *Server {
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/lint", s.handleLint)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully with a 10 second drain timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID returns the request's ID, set by middleware on every request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID assigns a UUID to each request and echoes it in the
// X-Request-ID header. A client-supplied ID is kept.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// manifestRequest is the JSON request form for parse and lint.
type manifestRequest struct {
	Filename string   `json:"filename"`
	Content  string   `json:"content"`
	Disable  []string `json:"disable,omitempty"`
	Unpinned bool     `json:"unpinned,omitempty"`
}

// errBodyTooLarge rejects bodies over MaxBodyBytes. Truncating instead
// would lint a prefix of the manifest and could bless a broken one.
var errBodyTooLarge = errors.New("request body exceeds the size limit")

// readManifest accepts either the JSON request form or a raw text body.
func (s *Server) readManifest(r *http.Request) (*manifestRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		return nil, errBodyTooLarge
	}
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}

	if strings.HasPrefix(strings.TrimSpace(r.Header.Get("Content-Type")), "application/json") {
		var req manifestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		if req.Content == "" {
			return nil, errors.New("missing content field")
		}
		if req.Filename == "" {
			req.Filename = "requirements.txt"
		} else if err := pkgerrors.ValidateManifestFilename(req.Filename); err != nil {
			return nil, err
		}
		return &req, nil
	}
	return &manifestRequest{Filename: "requirements.txt", Content: string(body)}, nil
}

// requestErrStatus maps a readManifest failure to its HTTP status.
func requestErrStatus(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, err := s.readManifest(r)
	if err != nil {
		writeError(w, requestErrStatus(err), err)
		return
	}
	set, err := manifest.SetFromReader(req.Filename, strings.NewReader(req.Content))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, parseResponse(set))
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	req, err := s.readManifest(r)
	if err != nil {
		writeError(w, requestErrStatus(err), err)
		return
	}
	set, err := manifest.SetFromReader(req.Filename, strings.NewReader(req.Content))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg := s.cfg.Lint
	if len(req.Disable) > 0 {
		cfg.Disable = req.Disable
	}
	if req.Unpinned {
		cfg.Unpinned = true
	}

	rep := lint.Run(set, cfg)
	errs, warns, infos := rep.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"findings": rep.Findings,
		"errors":   errs,
		"warnings": warns,
		"infos":    infos,
	})
}

// parseResponse is the /v1/parse payload.
func parseResponse(set *manifest.Set) map[string]any {
	reqs := make([]map[string]any, 0, len(set.Requirements))
	for _, req := range set.Requirements {
		entry := map[string]any{
			"kind": req.Kind.String(),
			"name": req.Name,
			"line": req.Line,
		}
		if s := req.Specifiers.String(); s != "" {
			entry["specifiers"] = s
		}
		if req.MarkerText != "" {
			entry["marker"] = req.MarkerText
		}
		if req.URL != "" {
			entry["url"] = req.URL
		}
		reqs = append(reqs, entry)
	}
	return map[string]any{
		"requirements": reqs,
		"problems":     set.Problems,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
