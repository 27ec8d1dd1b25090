package controlplane

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/store"
	"github.com/fentz26/resortops/internal/tasks"
)

// Version is reported by /health. Release builds set it with -ldflags.
var Version = "0.1.0"

// Server provides the HTTP API for resortops.
type Server struct {
	service *Service
	store   *store.Store
	monitor *monitor.Monitor
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, st *store.Store, addr string) *Server {
	return &Server{
		service: service,
		store:   st,
		addr:    addr,
	}
}

// SetMonitor attaches the attention monitor so /health can report its stats.
func (s *Server) SetMonitor(m *monitor.Monitor) {
	s.monitor = m
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)
	mux.HandleFunc("/log", s.handleLog)
	mux.HandleFunc("/help", s.handleHelpInbox)
	mux.HandleFunc("/attention", s.handleAttention)
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting resortops daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool                   `json:"ok"`
	DB      string                 `json:"db"`
	Version string                 `json:"version"`
	Time    string                 `json:"time"`
	Tasks   int                    `json:"tasks"`
	Monitor map[string]interface{} `json:"monitor,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Tasks:   s.service.Board().Len(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		resp.OK = false
		resp.DB = err.Error()
	}
	if s.monitor != nil {
		resp.Monitor = s.monitor.GetStats()
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleTasks handles POST /tasks and GET /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskByID handles /tasks/{id}/*
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	taskID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	if r.Method == http.MethodGet {
		switch action {
		case "":
			s.respondTask(w, http.StatusOK)(s.service.GetTask(taskID))
		case "candidates":
			s.candidates(w, r, taskID)
		case "log":
			s.taskLog(w, taskID)
		case "audit":
			s.taskAudit(w, r, taskID)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respond := s.respondTask(w, http.StatusOK)
	switch action {
	case "status":
		var req statusRequest
		if decode(w, r, &req) {
			respond(s.service.SetStatus(taskID, req.Status))
		}
	case "advance":
		var req advanceRequest
		if decode(w, r, &req) {
			respond(s.service.Advance(taskID, req.To))
		}
	case "checklist":
		var req checklistRequest
		if decode(w, r, &req) {
			respond(s.service.ToggleChecklistItem(taskID, req.Item))
		}
	case "needs-check":
		respond(s.service.ToggleNeedsCheck(taskID))
	case "assign":
		var req staffRequest
		if decode(w, r, &req) {
			respond(s.service.Reassign(taskID, req.StaffID))
		}
	case "shuttle-assign":
		var req shuttleAssignRequest
		if decode(w, r, &req) {
			respond(s.service.ReassignShuttle(taskID, req.VehicleID, req.DriverID))
		}
	case "accept":
		var req staffRequest
		if decode(w, r, &req) {
			respond(s.service.AcceptHelp(taskID, req.StaffID))
		}
	case "complete":
		respond(s.service.CompleteHelp(taskID))
	case "cancel":
		respond(s.service.CancelHelp(taskID))
	case "report":
		var req reportRequest
		if decode(w, r, &req) {
			respond(s.service.SetCompletionReport(taskID, req.Report))
		}
	case "notes":
		var req notesRequest
		if decode(w, r, &req) {
			respond(s.service.SetNotes(taskID, req.Notes))
		}
	case "priority":
		var req priorityRequest
		if decode(w, r, &req) {
			respond(s.service.SetPriority(taskID, req.Priority))
		}
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleLog handles POST /log and GET /log
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.addLogEntry(w, r)
	case http.MethodGet:
		s.queryLog(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// --- Request bodies ---

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

type advanceRequest struct {
	To string `json:"to"` // empty moves one step forward
}

type checklistRequest struct {
	Item string `json:"item"`
}

type staffRequest struct {
	StaffID string `json:"staff_id"`
}

type shuttleAssignRequest struct {
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
}

type reportRequest struct {
	Report string `json:"report"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type priorityRequest struct {
	Priority models.Priority `json:"priority"`
}

type addLogRequest struct {
	TaskID  string `json:"task_id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// --- Task Handlers ---

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if !decode(w, r, &d) {
		return
	}
	s.respondTask(w, http.StatusCreated)(s.service.CreateTask(d))
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.ListTasks(f))
}

func parseFilter(r *http.Request) (tasks.Filter, error) {
	q := r.URL.Query()
	f := tasks.Filter{
		Type:    models.TaskType(q.Get("type")),
		Status:  models.TaskStatus(q.Get("status")),
		StaffID: q.Get("staff"),
		RoomID:  q.Get("room"),
	}
	if f.Type != "" && !f.Type.IsValid() {
		return f, fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, f.Type)
	}
	if f.Status != "" && !f.Status.IsValid() {
		return f, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, f.Status)
	}

	flags := map[string]*bool{
		"anniversary": &f.AnniversaryOnly,
		"attention":   &f.NeedsAttention,
		"active":      &f.ActiveOnly,
	}
	for name, dst := range flags {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: %s must be true or false", ErrInvalidRequest, name)
		}
		*dst = b
	}
	return f, nil
}

func (s *Server) candidates(w http.ResponseWriter, r *http.Request, taskID string) {
	result, err := s.service.Candidates(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) taskLog(w http.ResponseWriter, taskID string) {
	entries, err := s.service.TaskLog(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) taskAudit(w http.ResponseWriter, r *http.Request, taskID string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.service.Audit(taskID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.PDREntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Log Handlers ---

func (s *Server) addLogEntry(w http.ResponseWriter, r *http.Request) {
	var req addLogRequest
	if !decode(w, r, &req) {
		return
	}

	entry, err := s.service.AddLogEntry(req.TaskID, req.Author, req.Content, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) queryLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.QueryLog(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Board Views ---

func (s *Server) handleHelpInbox(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	inbox, err := s.service.HelpInbox(r.URL.Query().Get("staff"))
	if err != nil {
		writeError(w, err)
		return
	}
	if inbox == nil {
		inbox = []models.Task{}
	}
	writeJSON(w, http.StatusOK, inbox)
}

func (s *Server) handleAttention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Attention())
}

// --- Helpers ---

// respondTask returns a writer for the (task, error) result of a service call.
func (s *Server) respondTask(w http.ResponseWriter, okStatus int) func(*models.Task, error) {
	return func(task *models.Task, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, okStatus, task)
	}
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json: %v", ErrInvalidRequest, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
