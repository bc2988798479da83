// Package dashboard serves a read-only web view over the entity cache:
// project lists, the kanban board, summary stats, and a websocket feed
// that pushes a refresh signal whenever the cache changes.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/leadmate/leadmate/pkg/domain/analytics"
	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/domain/task"
	"github.com/leadmate/leadmate/pkg/store"
)

//go:embed templates/*
var templatesFS embed.FS

// DataProvider exposes the derived views the dashboard renders.
type DataProvider interface {
	Projects() []project.Project
	ProjectsByStatus() analytics.ProjectBuckets
	TaskColumns() (analytics.Columns, analytics.Counts)
	DashboardStats(now time.Time) analytics.Stats
}

// Server is the dashboard HTTP server.
type Server struct {
	addr     string
	provider DataProvider
	server   *http.Server
	tmpl     *template.Template
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates a new dashboard server.
func NewServer(addr string, provider DataProvider) (*Server, error) {
	funcMap := template.FuncMap{
		"statusClass": statusClass,
		"formatTime":  formatTime,
		"json":        toJSON,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		addr:     addr,
		provider: provider,
		tmpl:     tmpl,
		clients:  make(map[*websocket.Conn]struct{}),
	}, nil
}

// Start starts the dashboard server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /board", s.handleBoard)
	mux.HandleFunc("GET /projects", s.handleProjects)
	mux.HandleFunc("GET /api/stats", s.handleAPIStats)
	mux.HandleFunc("GET /api/board", s.handleAPIBoard)
	mux.HandleFunc("GET /ws", s.handleWS)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Dashboard server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// NotifyChange pushes a change event to all connected websocket
// clients. Wire it to the mutation engine's notify hook so the page
// refreshes as mutations apply and revert.
func (s *Server) NotifyChange(collection store.Collection, id string) {
	payload, err := json.Marshal(map[string]string{
		"collection": string(collection),
		"id":         id,
	})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// PageData holds data for template rendering.
type PageData struct {
	Title    string
	Projects []project.Project
	Buckets  analytics.ProjectBuckets
	Columns  analytics.Columns
	Counts   analytics.Counts
	Stats    analytics.Stats
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Dashboard"}
	data.Stats = s.provider.DashboardStats(time.Now())
	data.Buckets = s.provider.ProjectsByStatus()
	data.Columns, data.Counts = s.provider.TaskColumns()
	s.render(w, "index.html", data)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Board"}
	data.Columns, data.Counts = s.provider.TaskColumns()
	s.render(w, "board.html", data)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Projects"}
	data.Projects = s.provider.Projects()
	data.Buckets = s.provider.ProjectsByStatus()
	s.render(w, "projects.html", data)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.provider.DashboardStats(time.Now()))
}

func (s *Server) handleAPIBoard(w http.ResponseWriter, r *http.Request) {
	columns, counts := s.provider.TaskColumns()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"columns": columns,
		"counts":  counts,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Drain the read side so pings and close frames are processed;
	// the feed is push-only.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Template helper functions
func statusClass(status task.Status) string {
	switch status {
	case task.StatusTodo:
		return "status-todo"
	case task.StatusInProgress:
		return "status-progress"
	case task.StatusCompleted:
		return "status-done"
	default:
		return "status-unknown"
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func toJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
