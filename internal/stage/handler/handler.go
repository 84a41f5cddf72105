package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/session"
	"github.com/msto63/dramatica/internal/stage/schema"
	"github.com/msto63/dramatica/pkg/core/health"
	"github.com/msto63/dramatica/pkg/core/version"
)

// SourceRequest carries a scene source text
type SourceRequest struct {
	Source string `json:"source"`
}

// RunRequest is a batch run with preset inputs
type RunRequest struct {
	Source string        `json:"source"`
	Inputs []interface{} `json:"inputs,omitempty"`
}

// InputRequest supplies the awaited value of a session
type InputRequest struct {
	Value interface{} `json:"value"`
}

// ErrorBody is the error payload of every failed request
type ErrorBody struct {
	Code    mdwerror.Code `json:"code"`
	Message string        `json:"message"`
	Details interface{}   `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// RootResponse describes the API
type RootResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// CORS holds the cross-origin settings applied to API responses
type CORS struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
}

// Config configures a Handler
type Config struct {
	Engine         *scene.Engine
	Manager        *session.Manager
	Health         *health.Registry
	Validator      *schema.Validator
	Logger         *mdwlog.Logger
	MaxRequestSize int64
	RunTimeout     time.Duration
	CORS           CORS
}

// Handler handles the HTTP API
type Handler struct {
	engine    *scene.Engine
	manager   *session.Manager
	health    *health.Registry
	validator *schema.Validator
	logger    *mdwlog.Logger
	maxBody   int64
	timeout   time.Duration
	cors      CORS
}

// NewHandler creates a new HTTP handler
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}
	if cfg.Engine == nil {
		cfg.Engine = scene.New(scene.Options{Logger: cfg.Logger})
	}
	if cfg.Manager == nil {
		cfg.Manager = session.NewManager(session.Options{Engine: cfg.Engine, Logger: cfg.Logger})
	}
	if cfg.Validator == nil {
		cfg.Validator = schema.MustNew()
	}
	if cfg.Health == nil {
		cfg.Health = health.NewRegistry("dramatica", version.Stage)
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 1 << 20
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Second
	}

	return &Handler{
		engine:    cfg.Engine,
		manager:   cfg.Manager,
		health:    cfg.Health,
		validator: cfg.Validator,
		logger:    cfg.Logger.WithField("component", "stage-handler"),
		maxBody:   cfg.MaxRequestSize,
		timeout:   cfg.RunTimeout,
		cors:      cfg.CORS,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.applyCORS(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Route requests
	path := strings.Trim(r.URL.Path, "/")
	switch {
	case path == "health":
		h.handleHealth(w, r)
		return
	case path == "version":
		h.handleVersion(w, r)
		return
	}

	path = strings.TrimPrefix(path, "api/v1")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		h.handleRoot(w, r)
	case path == "health":
		h.handleHealth(w, r)
	case path == "tokenize":
		h.handleTokenize(w, r)
	case path == "analyze":
		h.handleAnalyze(w, r)
	case path == "format":
		h.handleFormat(w, r)
	case path == "run":
		h.handleRun(w, r)
	case path == "sessions":
		h.handleBegin(w, r)
	case strings.HasPrefix(path, "sessions/") && strings.HasSuffix(path, "/input"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "sessions/"), "/input")
		h.handleInput(w, r, id)
	case strings.HasPrefix(path, "sessions/"):
		h.handleSession(w, r, strings.TrimPrefix(path, "sessions/"))
	default:
		h.writeError(w, http.StatusNotFound, mdwerror.CodeInvalidInput, "Unknown endpoint: "+r.URL.Path, nil)
	}
}

func (h *Handler) applyCORS(w http.ResponseWriter, r *http.Request) {
	if !h.cors.Enabled {
		return
	}

	origin := r.Header.Get("Origin")
	allowed := ""
	for _, o := range h.cors.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = o
			break
		}
	}
	if allowed == "" {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allowed)
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(h.cors.AllowedMethods, ", "))
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}

	h.writeJSON(w, http.StatusOK, RootResponse{
		Name:    "Dramatica Stage",
		Version: version.Stage,
		Endpoints: []string{
			"POST /api/v1/tokenize",
			"POST /api/v1/analyze",
			"POST /api/v1/format",
			"POST /api/v1/run",
			"POST /api/v1/sessions",
			"POST /api/v1/sessions/{id}/input",
			"DELETE /api/v1/sessions/{id}",
			"GET /api/v1/ws",
			"GET /health",
			"GET /version",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := h.health.Check(ctx)
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "GET")
		return
	}
	h.writeJSON(w, http.StatusOK, version.Get())
}

func (h *Handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if !h.decode(w, r, schema.Source, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.Tokenize(req.Source))
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if !h.decode(w, r, schema.Source, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.Analyze(req.Source))
}

func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if !h.decode(w, r, schema.Source, &req) {
		return
	}

	formatted, err := h.engine.Format(req.Source)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, SourceRequest{Source: formatted})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !h.decode(w, r, schema.Run, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	timer := h.logger.StartTimer("run")
	report := h.engine.Run(ctx, req.Source, inputStrings(req.Inputs))
	timer.WithField("status", report.Status).Stop()

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if !h.decode(w, r, schema.Source, &req) {
		return
	}

	resp, err := h.manager.BeginSource(r.Context(), req.Source)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	status := http.StatusOK
	if resp.Status == session.StatusSuspended {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request, id string) {
	var req InputRequest
	if !h.decode(w, r, schema.Input, &req) {
		return
	}

	resp, err := h.manager.Resume(r.Context(), id, inputString(req.Value))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		h.methodNotAllowed(w, "DELETE")
		return
	}

	if err := h.manager.Cancel(r.Context(), id); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

// decode enforces POST, reads the body within the size limit, validates
// it against the named schema and unmarshals it into v
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, name string, v interface{}) bool {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, "POST")
		return false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, mdwerror.CodeInvalidInput,
				fmt.Sprintf("request body exceeds %d bytes", h.maxBody), nil)
			return false
		}
		h.writeError(w, http.StatusBadRequest, mdwerror.CodeInvalidInput, "failed to read request body", nil)
		return false
	}

	if err := h.validator.Validate(name, body); err != nil {
		h.writeErr(w, err)
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, mdwerror.CodeValidationFailed, err.Error(), nil)
		return false
	}
	return true
}

// inputString renders a JSON input value the way a user would type it
func inputString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func inputStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = inputString(v)
	}
	return out
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	h.writeError(w, http.StatusMethodNotAllowed, mdwerror.CodeInvalidInput, "Use "+allow, nil)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WarnWithErr("Failed to encode response", err)
	}
}

// writeErr renders err with the HTTP status of its code
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	code := scene.Classify(err)
	if errors.Is(err, context.Canceled) {
		code = mdwerror.CodeTimeout
	}

	var details interface{}
	var mdwErr *mdwerror.Error
	if errors.As(err, &mdwErr) {
		if d := mdwErr.Details(); len(d) > 0 {
			details = d
		}
	}

	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.ErrorWithErr("Request failed", err, mdwlog.Fields{"code": string(code)})
	}
	h.writeError(w, status, code, err.Error(), details)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code mdwerror.Code, message string, details interface{}) {
	h.writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
