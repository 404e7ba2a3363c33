// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/usecases"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
	maxBodyBytes      = 1 << 20

	headerRequestID = "X-Request-ID"
)

// ChatRequest is the JSON body of POST /chat.
type ChatRequest struct {
	UserText       string   `json:"user_text"`
	AllowCloud     *bool    `json:"allow_cloud"`
	WorkspaceDirs  []string `json:"workspace_dirs"`
	PreferredFiles []string `json:"preferred_files"`
}

// Route describes one registered endpoint.
type Route struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// Server is the HTTP server for the chat API.
type Server struct {
	chat         *usecases.ChatUseCase
	addr         string
	origins      map[string]bool
	defaultCloud bool
	routes       []Route
	handler      http.Handler
}

// NewServer creates a new HTTP server. origins is the CORS allow-list and
// defaultCloud applies when a request omits allow_cloud.
func NewServer(chat *usecases.ChatUseCase, addr string, origins []string, defaultCloud bool) *Server {
	s := &Server{
		chat:         chat,
		addr:         addr,
		origins:      make(map[string]bool, len(origins)),
		defaultCloud: defaultCloud,
	}
	for _, o := range origins {
		s.origins[o] = true
	}

	mux := http.NewServeMux()
	s.handle(mux, http.MethodGet, "/", s.handleIndex)
	s.handle(mux, http.MethodGet, "/health", s.handleHealth)
	s.handle(mux, http.MethodGet, "/routes", s.handleRoutes)
	s.handle(mux, http.MethodPost, "/chat", s.handleChat)
	s.handle(mux, http.MethodGet, "/audit", s.handleAudit)

	s.handler = requestIDMiddleware(s.corsMiddleware(loggingMiddleware(mux)))
	return s
}

func (s *Server) handle(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	pattern := method + " " + path
	if path == "/" {
		pattern += "{$}"
	}
	mux.HandleFunc(pattern, h)
	s.routes = append(s.routes, Route{Path: path, Methods: []string{method}})
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	log.Printf("[INFO] docguard server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleIndex returns a banner with the routes worth trying.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "docguard backend is running.",
		"try":     []string{"/health", "/routes", "/chat"},
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.routes)
}

// handleChat runs one request through the orchestrator.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	allowCloud := s.defaultCloud
	if req.AllowCloud != nil {
		allowCloud = *req.AllowCloud
	}

	resp, err := s.chat.Process(r.Context(), entities.Request{
		UserText:       req.UserText,
		AllowCloud:     allowCloud,
		WorkspaceDirs:  req.WorkspaceDirs,
		PreferredFiles: req.PreferredFiles,
	})
	if errors.Is(err, usecases.ErrEmptyUserText) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		log.Printf("[ERROR] chat: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleAudit lists recent audit records.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	records, err := s.chat.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] audit: %v", err)
		writeError(w, http.StatusInternalServerError, "audit store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[INFO] %s %s %d %v id=%s", r.Method, r.URL.Path, rec.status, time.Since(start), w.Header().Get(headerRequestID))
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware echoes allow-listed origins, including "null" for file:// clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.origins[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerRequestID)
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
