// Package httpapi is the HTTP surface of the generator: a chi router with
// JSON handlers over the catalog, generation and artifact services.
package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/metrics"
	cataloguc "github.com/telforge/phonegen/internal/usecase/catalog"
	generateuc "github.com/telforge/phonegen/internal/usecase/generate"
	healthuc "github.com/telforge/phonegen/internal/usecase/health"
)

// Artifacts is the slice of the artifact store the API serves from.
type Artifacts interface {
	Open(name string) (*os.File, os.FileInfo, error)
	Sweep(now time.Time) (int, int64, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the generator over HTTP.
type Server struct {
	catalog       *cataloguc.Service
	generator     *generateuc.Service
	artifacts     Artifacts
	health        *healthuc.Service
	sessions      *SessionAuth
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	generator *generateuc.Service,
	artifacts Artifacts,
	health *healthuc.Service,
	sessions *SessionAuth,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog:   catalog,
		generator: generator,
		artifacts: artifacts,
		health:    health,
		sessions:  sessions,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		limitExceededHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrArtifactNotFound, http.StatusNotFound, codeArtifactNotFound),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrPartitionFailed, http.StatusInternalServerError, codeGenerationFailed),
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)
	r.Get("/api/provinces", s.handleProvinces)
	r.Get("/api/cities/{province}", s.handleCities)
	r.Post("/api/generate", s.handleGenerate)
	r.Get("/api/download/{filename}", s.handleDownload)
	r.Post("/api/cleanup", s.handleCleanup)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User string `json:"user"`
}

// handleLogin handles POST /api/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cookie, err := s.sessions.Login(req.Username, req.Password)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, loginResponse{User: req.Username})
}

// handleLogout handles POST /api/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessions.Logout())
	w.WriteHeader(http.StatusNoContent)
}

// handleProvinces handles GET /api/provinces.
func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"provinces": s.catalog.Provinces(),
	})
}

// handleCities handles GET /api/cities/{province}.
func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	province := pathParam(r, "province")
	writeJSON(w, http.StatusOK, map[string]any{
		"province": province,
		"cities":   s.catalog.Cities(province),
	})
}

type generateRequest struct {
	Prefix    string `json:"prefix"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Operators []int  `json:"operators,omitempty"`
	Trailing4 string `json:"trailing4,omitempty"`
	Trailing3 string `json:"trailing3,omitempty"`
}

type generatedFile struct {
	Name      string `json:"name"`
	Lines     int64  `json:"lines"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url"`
}

type generateResponse struct {
	Total      int64           `json:"total"`
	DurationMS int64           `json:"duration_ms"`
	Files      []generatedFile `json:"files"`
}

// handleGenerate handles POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.generator.Generate(r.Context(), generateuc.Request{
		Prefix:         req.Prefix,
		Province:       req.Province,
		City:           req.City,
		Operators:      req.Operators,
		TrailingFixed4: req.Trailing4,
		TrailingFixed3: req.Trailing3,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	files := make([]generatedFile, len(out.Manifest.Files))
	for i, f := range out.Manifest.Files {
		files[i] = generatedFile{
			Name:      f.Name,
			Lines:     f.Lines,
			Size:      humanize.IBytes(uint64(f.Bytes)),
			SizeBytes: f.Bytes,
			URL:       "/api/download/" + url.PathEscape(f.Name),
		}
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Total:      out.Manifest.TotalLines,
		DurationMS: out.Duration.Milliseconds(),
		Files:      files,
	})
}

// handleDownload handles GET /api/download/{filename}.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "filename")

	f, fi, err := s.artifacts.Open(name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	defer func() { _ = f.Close() }()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fi.Name()})
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// handleCleanup handles POST /api/cleanup.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed, reclaimed, err := s.artifacts.Sweep(time.Now())
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	if removed > 0 {
		metrics.ArtifactsSweptTotal.Add(float64(removed))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":         removed,
		"reclaimed_bytes": reclaimed,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
		"blocks": s.catalog.Blocks(),
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pathParam returns a decoded URL parameter. Chi keeps the raw escaped
// segment, and artifact names carry non-ASCII location names.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeLimitExceeded    errorCode = "limit_exceeded"
	codeArtifactNotFound errorCode = "artifact_not_found"
	codeUnauthorized     errorCode = "unauthorized"
	codeGenerationFailed errorCode = "generation_failed"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns an error message for the client without exposing
// internals. Validation and limit errors carry their detail, everything else
// collapses to the sentinel text.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var le *domain.LimitExceededError
	if errors.As(err, &le) {
		return le.Error()
	}

	sentinels := []error{
		domain.ErrValidation,
		domain.ErrLimitExceeded,
		domain.ErrArtifactNotFound,
		domain.ErrUnauthorized,
		domain.ErrPartitionFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// limitExceededHandler handles ErrLimitExceeded with the computed plan size,
// so the client can tell how far the request overshot.
func limitExceededHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrLimitExceeded) {
		return false
	}
	var le *domain.LimitExceededError
	if errors.As(err, &le) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    codeLimitExceeded,
			"message": msg,
			"count":   le.Count,
			"ceiling": le.Ceiling,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, codeLimitExceeded, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
