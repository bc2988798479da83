package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/chat"
	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/domain/task"
	"github.com/leadmate/leadmate/pkg/store"
)

type fixture struct {
	store  *store.Store
	engine *Engine
	client *api.Client
	views  *Views
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := api.NewSession()
	session.Init("tok", api.User{ID: "u1", CompanyID: "co-1", LeadID: "lead-1"})
	client := api.NewClient(srv.URL, session, api.WithRetry(1, time.Millisecond), api.WithLogf(t.Logf))

	s := store.New()
	return &fixture{
		store:  s,
		engine: NewEngine(s),
		client: client,
		views:  NewViews(s),
	}
}

func TestKanbanRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"t1","title":"ship it","status":"todo"}]`))
	})
	var patched atomic.Bool
	mux.HandleFunc("PATCH /api/tasks/t1/status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "inprogress" {
			t.Errorf("patched status = %s", body["status"])
		}
		patched.Store(true)
		w.WriteHeader(http.StatusOK)
	})

	f := newFixture(t, mux)
	tasks := NewTaskService(f.engine, f.client)

	if err := tasks.Refresh(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	if err := tasks.Move(context.Background(), "t1", task.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if !patched.Load() {
		t.Error("no status request reached the backend")
	}

	_, counts := f.views.TaskColumns()
	if counts.InProgress != 1 || counts.Todo != 0 {
		t.Errorf("counts = %+v, want in_progress=1 todo=0", counts)
	}
}

func TestMoveRevertsToPriorColumnOnRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"t1","status":"todo"}]`))
	})
	mux.HandleFunc("PATCH /api/tasks/t1/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"not allowed"}`))
	})

	f := newFixture(t, mux)
	tasks := NewTaskService(f.engine, f.client)
	if err := tasks.Refresh(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}

	err := tasks.Move(context.Background(), "t1", task.StatusCompleted)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if api.UserMessage(err) != "not allowed" {
		t.Errorf("surfaced message = %q", api.UserMessage(err))
	}

	ent, _ := f.store.Get(store.Tasks, "t1")
	if got := ent.(task.Task).Status; got != task.StatusTodo {
		t.Errorf("status after revert = %s, want todo exactly", got)
	}
}

func TestProjectCreate_PlaceholderSwap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		var p project.Project
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatal(err)
		}
		p.ID = "srv-42"
		json.NewEncoder(w).Encode(p)
	})

	f := newFixture(t, mux)
	projects := NewProjectService(f.engine, f.client)

	placeholder, err := projects.Create(context.Background(), project.Project{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(placeholder, "local-") {
		t.Errorf("placeholder = %q", placeholder)
	}
	if _, ok := f.store.Get(store.Projects, placeholder); ok {
		t.Error("placeholder survived the commit")
	}
	ent, ok := f.store.Get(store.Projects, "srv-42")
	if !ok {
		t.Fatal("server project missing")
	}
	if ent.(project.Project).Title != "Apollo" {
		t.Errorf("project = %+v", ent)
	}
}

func TestProjectCreate_FailureRemovesOptimisticEntry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"title taken"}`))
	})

	f := newFixture(t, mux)
	projects := NewProjectService(f.engine, f.client)

	if _, err := projects.Create(context.Background(), project.Project{Title: "Apollo"}); err == nil {
		t.Fatal("expected failure")
	}
	if f.store.Len(store.Projects) != 0 {
		t.Error("optimistic project not reverted")
	}
}

func TestProjectUpdate_ClampsProgress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/projects/p1", func(w http.ResponseWriter, r *http.Request) {
		var u map[string]any
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			t.Fatal(err)
		}
		if got := u["progress"].(float64); got != 100 {
			t.Errorf("progress on wire = %v, want clamped 100", got)
		}
		w.Write([]byte(`{"id":"p1","title":"x","status":"active","progress":100}`))
	})

	f := newFixture(t, mux)
	f.store.Upsert(store.Projects, project.Project{ID: "p1", Title: "x", Status: project.StatusActive, Progress: 50})
	projects := NewProjectService(f.engine, f.client)

	if err := projects.SetProgress(context.Background(), "p1", 250); err != nil {
		t.Fatal(err)
	}
	ent, _ := f.store.Get(store.Projects, "p1")
	if got := ent.(project.Project).Progress; got != 100 {
		t.Errorf("progress = %d", got)
	}
}

func TestGenerate_IngestsValidatedTasks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tasks":[
			{"id":"t1","title":"design schema","status":"todo","priority":"high"},
			{"id":"t2","title":"write docs"}
		]}`))
	})

	f := newFixture(t, mux)
	tasks := NewTaskService(f.engine, f.client)

	generated, err := tasks.Generate(context.Background(), "p1", "launch plan")
	if err != nil {
		t.Fatal(err)
	}
	if len(generated) != 2 {
		t.Fatalf("generated %d tasks", len(generated))
	}
	ent, ok := f.store.Get(store.Tasks, "t2")
	if !ok {
		t.Fatal("t2 not ingested")
	}
	if got := ent.(task.Task).Status; got != task.StatusTodo {
		t.Errorf("missing status should default to todo, got %s", got)
	}
}

func TestChatService_SendAndFailure(t *testing.T) {
	var failSend atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages":[{"id":"h1","role":"user","content":"earlier question"}]}`))
	})
	mux.HandleFunc("POST /api/agents/doc-qa/chat", func(w http.ResponseWriter, r *http.Request) {
		if failSend.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"a1","reply":"see section 3"}`))
	})

	f := newFixture(t, mux)
	chats := NewChatService(f.client)

	msgs, err := chats.Open(context.Background(), chat.AgentDocQA, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID != "h1" {
		t.Fatalf("history = %v", msgs)
	}

	msgs, err = chats.Send(context.Background(), chat.AgentDocQA, "p1", "where is the kickoff doc?")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want history + user + reply", len(msgs))
	}
	if msgs[2].Content != "see section 3" {
		t.Errorf("reply = %+v", msgs[2])
	}

	failSend.Store(true)
	msgs, err = chats.Send(context.Background(), chat.AgentDocQA, "p1", "and now?")
	if err == nil {
		t.Fatal("expected send failure to surface")
	}
	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want user message kept plus error bubble", len(msgs))
	}
	if msgs[3].Role != chat.RoleUser || msgs[3].Content != "and now?" {
		t.Errorf("user message not preserved: %+v", msgs[3])
	}
	if msgs[4].Role != chat.RoleAssistant {
		t.Errorf("error bubble role = %s", msgs[4].Role)
	}
}

func TestChatService_SessionsAreIndependent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("POST /api/agents/doc-qa/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"a1","reply":"doc answer"}`))
	})
	mux.HandleFunc("POST /api/agents/tech-stack/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"a2","reply":"stack answer"}`))
	})

	f := newFixture(t, mux)
	chats := NewChatService(f.client)

	if _, err := chats.Send(context.Background(), chat.AgentDocQA, "p1", "q1"); err != nil {
		t.Fatal(err)
	}
	if _, err := chats.Send(context.Background(), chat.AgentTechStack, "p1", "q2"); err != nil {
		t.Fatal(err)
	}
	// Same agent, different context: separate log.
	if _, err := chats.Send(context.Background(), chat.AgentDocQA, "p2", "q3"); err != nil {
		t.Fatal(err)
	}

	if got := len(chats.Messages(chat.AgentDocQA, "p1")); got != 2 {
		t.Errorf("doc-qa/p1 has %d messages, want 2", got)
	}
	if got := len(chats.Messages(chat.AgentTechStack, "p1")); got != 2 {
		t.Errorf("tech-stack/p1 has %d messages, want 2", got)
	}
	if got := len(chats.Messages(chat.AgentDocQA, "p2")); got != 2 {
		t.Errorf("doc-qa/p2 has %d messages, want 2", got)
	}

	// Clearing doc-qa's current context (p2, the last one used) leaves
	// the rest alone.
	if err := chats.Clear(chat.AgentDocQA); err != nil {
		t.Fatal(err)
	}
	if got := len(chats.Messages(chat.AgentDocQA, "p2")); got != 0 {
		t.Errorf("cleared session still has %d messages", got)
	}
	if got := len(chats.Messages(chat.AgentDocQA, "p1")); got != 2 {
		t.Errorf("other context lost messages: %d", got)
	}
	if got := len(chats.Messages(chat.AgentTechStack, "p1")); got != 2 {
		t.Errorf("other agent lost messages: %d", got)
	}
}

func TestDocumentDelete_RevertRestoresEntry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/p1/documents", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"d1","filename":"spec.pdf"},{"id":"d2","filename":"notes.md"}]`))
	})
	mux.HandleFunc("DELETE /api/documents/d1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f := newFixture(t, mux)
	docs := NewDocumentService(f.engine, f.client)
	if err := docs.Refresh(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}

	if err := docs.Delete(context.Background(), "d1"); err == nil {
		t.Fatal("expected delete failure")
	}

	list := f.store.List(store.Documents)
	if len(list) != 2 || list[0].EntityID() != "d1" {
		t.Errorf("document order after revert = %v, want d1 back in first place", list)
	}
}
