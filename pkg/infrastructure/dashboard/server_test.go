package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leadmate/leadmate/pkg/domain/analytics"
	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/domain/task"
)

// mockProvider implements DataProvider for testing.
type mockProvider struct {
	projects []project.Project
	tasks    []task.Task
}

func (m *mockProvider) Projects() []project.Project { return m.projects }

func (m *mockProvider) ProjectsByStatus() analytics.ProjectBuckets {
	return analytics.ProjectsByStatus(m.projects)
}

func (m *mockProvider) TaskColumns() (analytics.Columns, analytics.Counts) {
	return analytics.TaskColumns(m.tasks)
}

func (m *mockProvider) DashboardStats(now time.Time) analytics.Stats {
	return analytics.DashboardStats(m.projects, m.tasks, now)
}

func testProvider() *mockProvider {
	due := time.Now().Add(48 * time.Hour)
	return &mockProvider{
		projects: []project.Project{
			{ID: "p1", Title: "Website Relaunch", Status: project.StatusActive, Progress: 40, Deadline: &due},
			{ID: "p2", Title: "Mobile App", Status: project.StatusCompleted, Progress: 100},
		},
		tasks: []task.Task{
			{ID: "t1", Title: "Design homepage", Status: task.StatusInProgress, Priority: task.PriorityHigh},
			{ID: "t2", Title: "Set up CI", Status: task.StatusTodo, Priority: task.PriorityMedium},
			{ID: "t3", Title: "Pick stack", Status: task.StatusCompleted, Priority: task.PriorityLow},
		},
	}
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(":8080", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", server.addr)
	}
}

func TestHandleIndex(t *testing.T) {
	server, err := NewServer(":8080", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	server.handleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Dashboard") {
		t.Error("Expected page to contain Dashboard")
	}
	if !strings.Contains(body, "Website Relaunch") {
		t.Error("Expected page to list the active project")
	}
	if !strings.Contains(body, "Design homepage") {
		t.Error("Expected page to show board cards")
	}
}

func TestHandleBoard(t *testing.T) {
	server, err := NewServer(":8080", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	rec := httptest.NewRecorder()

	server.handleBoard(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"To Do (1)", "In Progress (1)", "Completed (1)", "Set up CI"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected board page to contain %q", want)
		}
	}
}

func TestHandleProjects(t *testing.T) {
	server, err := NewServer(":8080", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	rec := httptest.NewRecorder()

	server.handleProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Website Relaunch") || !strings.Contains(body, "Mobile App") {
		t.Error("Expected projects page to list all projects")
	}
}

func TestHandleAPIStats(t *testing.T) {
	server, err := NewServer(":8080", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()

	server.handleAPIStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var stats analytics.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.TotalProjects != 2 || stats.ActiveProjects != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.DueThisWeek != 1 {
		t.Errorf("DueThisWeek = %d, want 1", stats.DueThisWeek)
	}
}

func TestHandleAPIBoard(t *testing.T) {
	server, err := NewServer(":8080", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	rec := httptest.NewRecorder()

	server.handleAPIBoard(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var payload struct {
		Counts analytics.Counts `json:"counts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload.Counts.Todo != 1 || payload.Counts.InProgress != 1 || payload.Counts.Completed != 1 {
		t.Errorf("Unexpected counts: %+v", payload.Counts)
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status task.Status
		want   string
	}{
		{task.StatusTodo, "status-todo"},
		{task.StatusInProgress, "status-progress"},
		{task.StatusCompleted, "status-done"},
		{task.Status("unknown"), "status-unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := statusClass(tt.status); got != tt.want {
				t.Errorf("statusClass(%s) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(nil); got != "-" {
		t.Errorf("formatTime(nil) = %s, want -", got)
	}

	tm := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if got := formatTime(&tm); got != "2026-01-15" {
		t.Errorf("formatTime(%v) = %s, want 2026-01-15", tm, got)
	}
}

func TestServerShutdown(t *testing.T) {
	server, err := NewServer(":0", testProvider())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	// Shutdown without Start should not error
	if err := server.Shutdown(context.TODO()); err != nil {
		t.Errorf("Shutdown without Start should not error: %v", err)
	}
}
