// Package server exposes the results viewer: an HTML page and a /data
// endpoint that fetches, classifies and relays result files as JSON.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/abdulachik/benchview/internal/objectstore"
	"github.com/abdulachik/benchview/internal/results"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const storeComponent = "store"

// Error messages returned to the browser.
const (
	msgMissingFile      = "No 'file' parameter specified in URL."
	msgNotConfigured    = "Server is not configured for S3 access."
	msgBadCredentials   = "Server S3 credentials are invalid or missing."
	msgUnknownStructure = "Unknown file structure. Expected 'benchmarks' key (for YAML) or 'results' and 'config' keys (for JSON)."
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server dependencies.
type Config struct {
	// Store is nil when the object store is not configured.
	Store      objectstore.Getter
	Classifier *results.Classifier
	Health     *Health
	Title      string
}

// Server serves the results viewer.
type Server struct {
	store      objectstore.Getter
	classifier *results.Classifier
	health     *Health
	templates  *template.Template
	title      string
}

type indexView struct {
	Title string
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Healthy    bool                     `json:"healthy"`
	Components map[string]*HealthStatus `json:"components"`
}

// New creates a new server.
func New(cfg Config) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	classifier := cfg.Classifier
	if classifier == nil {
		classifier = results.NewClassifier()
	}
	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}
	title := cfg.Title
	if title == "" {
		title = "Benchmark Results Viewer"
	}

	s := &Server{
		store:      cfg.Store,
		classifier: classifier,
		health:     health,
		templates:  tmpl,
		title:      title,
	}
	if s.store == nil {
		s.health.SetUnhealthy(storeComponent, objectstore.ErrNotConfigured)
	}
	return s, nil
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /data", s.handleData)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Health returns the server's health tracker.
func (s *Server) Health() *Health {
	return s.health
}

// CheckStore pings the store once and records the outcome.
func (s *Server) CheckStore(ctx context.Context, p Pinger) error {
	if err := p.Ping(ctx); err != nil {
		s.health.SetUnhealthy(storeComponent, err)
		return err
	}
	s.health.SetHealthy(storeComponent, "bucket reachable")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index", indexView{Title: s.title}); err != nil {
		slog.Error("render index", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("file")
	if key == "" {
		writeError(w, http.StatusBadRequest, msgMissingFile)
		return
	}

	if s.store == nil {
		writeError(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	content, err := s.store.Get(r.Context(), key)
	if err != nil {
		status, msg := s.storeFailure(key, err)
		writeError(w, status, msg)
		return
	}
	s.health.SetHealthy(storeComponent, "last fetch succeeded")

	if !utf8.Valid(content) {
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred: file is not valid UTF-8 text")
		return
	}

	env, err := s.classifier.Classify(key, content)
	if err != nil {
		var perr *results.ParseError
		switch {
		case errors.As(err, &perr):
			slog.Warn("result file failed to parse", "key", key, "format", perr.Format, "error", perr.Err)
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("Error parsing %s file: %v", perr.Format, perr.Err))
		case errors.Is(err, results.ErrUnknownStructure):
			slog.Info("result file has unknown structure", "key", key)
			writeError(w, http.StatusBadRequest, msgUnknownStructure)
		default:
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err))
		}
		return
	}

	slog.Info("relayed result file", "key", key, "file_type", env.FileType, "bytes", len(content))
	writeJSON(w, http.StatusOK, env)
}

// storeFailure maps a store error to a status code and message and
// updates store health. A missing key still proves the store is reachable.
func (s *Server) storeFailure(key string, err error) (int, string) {
	var apiErr *objectstore.APIError

	switch {
	case errors.Is(err, objectstore.ErrNotFound):
		s.health.SetHealthy(storeComponent, "last fetch reached the bucket")
		return http.StatusNotFound, fmt.Sprintf("File not found in S3 bucket: %s", key)
	case errors.Is(err, objectstore.ErrNotConfigured):
		return http.StatusInternalServerError, msgNotConfigured
	case errors.Is(err, objectstore.ErrAuth):
		slog.Error("object store rejected credentials", "key", key, "error", err)
		s.health.SetUnhealthy(storeComponent, err)
		return http.StatusInternalServerError, msgBadCredentials
	case errors.As(err, &apiErr):
		slog.Warn("object store error", "key", key, "code", apiErr.Code, "error", err)
		return http.StatusInternalServerError, fmt.Sprintf("S3 Error: %s", apiErr.Error())
	default:
		slog.Error("fetch result file", "key", key, "error", err)
		s.health.SetUnhealthy(storeComponent, err)
		return http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Healthy:    s.health.IsOverallHealthy(),
		Components: s.health.GetAllStatuses(),
	}
	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes v before writing the header so an encoding failure
// can still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		body, _ = json.Marshal(errorResponse{Error: fmt.Sprintf("Error encoding response: %v", err)})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
