package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/interstellar-mission/game/config"
	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/generator"
	"github.com/wricardo/interstellar-mission/game/service"
	"github.com/wricardo/interstellar-mission/game/session"
	"github.com/wricardo/interstellar-mission/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.MissionService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(missionService service.MissionService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: missionService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Search
	api.HandleFunc("/sessions/{id}/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/sessions/{id}/solve", s.handleSolveStatus).Methods("GET")
	api.HandleFunc("/sessions/{id}/solve", s.handleCancelSolve).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/solutions", s.handleListSolutions).Methods("GET")

	// Playback
	api.HandleFunc("/sessions/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/playback", s.handleGetPlayback).Methods("GET")
	api.HandleFunc("/sessions/{id}/playback/reset", s.handleResetPlayback).Methods("POST")
	api.HandleFunc("/sessions/{id}/playback/solution", s.handleSelectSolution).Methods("PUT")
	api.HandleFunc("/sessions/{id}/cells/{row}/{col}", s.handleDescribeCell).Methods("GET")
	api.HandleFunc("/sessions/{id}/render.png", s.handleRenderPNG).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleSaveConfig).Methods("POST")
	api.HandleFunc("/configs/generate", s.handleGenerateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logRequests writes one line per request
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var cfgErr *engine.ConfigurationError
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSolveInProgress),
		errors.Is(err, session.ErrSessionAlreadyExists),
		errors.Is(err, engine.ErrNoResult),
		errors.Is(err, engine.ErrNoSolution):
		return http.StatusConflict
	case errors.As(err, &cfgErr),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, engine.ErrInvalidUniverse),
		errors.Is(err, engine.ErrInvalidOptions),
		errors.Is(err, engine.ErrSolutionIndex),
		errors.Is(err, engine.ErrOutOfBounds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	respondError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string                `json:"config_id,omitempty"`
		ConfigName string                `json:"config_name,omitempty"` // Deprecated, use config_id
		Options    *engine.SearchOptions `json:"options,omitempty"`
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Search Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		service.SolveRequest
		Async bool `json:"async,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Async {
		status, err := s.service.StartSolve(r.Context(), sessionID, req.SolveRequest)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusAccepted, status)
		return
	}

	status, err := s.service.Solve(r.Context(), sessionID, req.SolveRequest)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("solve finished",
		zap.String("session_id", sessionID),
		zap.String("state", string(status.State)),
		zap.Bool("found", status.Found),
		zap.Int("solutions", status.SolutionCount))
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSolveStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.GetSolveStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleCancelSolve(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.CancelSolve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	opts := service.SolutionListOptions{Page: 1, Limit: 20, Order: "asc"}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	page, err := s.service.ListSolutions(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// Playback Handlers

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Steps int `json:"steps"`
	}{Steps: 1}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	frame, err := s.service.Step(r.Context(), mux.Vars(r)["id"], req.Steps)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, frame)
}

func (s *Server) handleGetPlayback(w http.ResponseWriter, r *http.Request) {
	frame, err := s.service.GetPlayback(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, frame)
}

func (s *Server) handleResetPlayback(w http.ResponseWriter, r *http.Request) {
	frame, err := s.service.ResetPlayback(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, frame)
}

func (s *Server) handleSelectSolution(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := decodeBody(r, &req); err != nil || req.Index == nil {
		respondError(w, http.StatusBadRequest, "index is required")
		return
	}

	frame, err := s.service.SelectSolution(r.Context(), mux.Vars(r)["id"], *req.Index)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, frame)
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, rowErr := strconv.Atoi(vars["row"])
	col, colErr := strconv.Atoi(vars["col"])
	if rowErr != nil || colErr != nil {
		respondError(w, http.StatusBadRequest, "row and col must be integers")
		return
	}

	info, err := s.service.DescribeCell(r.Context(), vars["id"], engine.Coord{Row: row, Col: col})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleRenderPNG(w http.ResponseWriter, r *http.Request) {
	step, err := queryInt(r, "step", -1)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cellSize, err := queryInt(r, "cell_size", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := s.service.RenderPNG(r.Context(), mux.Vars(r)["id"], service.RenderOptions{Step: step, CellSize: cellSize})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	universe, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, universe)
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		// Filename defaults to the universe name
		Filename string                 `json:"filename,omitempty"`
		Universe *engine.UniverseConfig `json:"universe"`
	}
	if err := decodeBody(r, &req); err != nil || req.Universe == nil {
		respondError(w, http.StatusBadRequest, "universe is required")
		return
	}

	name := req.Filename
	if name == "" {
		name = req.Universe.Name
	}
	if name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), name, req.Universe); err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": name,
	})
}

func (s *Server) handleGenerateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string            `json:"filename"`
		Options  generator.Options `json:"options"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Filename == "" {
		req.Filename = req.Options.Name
	}
	if req.Filename == "" {
		respondError(w, http.StatusBadRequest, "filename is required")
		return
	}

	info, err := s.service.GenerateConfig(r.Context(), req.Filename, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusNotFound)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
