package application

import (
	"context"
	"fmt"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/task"
	"github.com/leadmate/leadmate/pkg/store"
)

// TaskService handles the kanban board: loading, bulk generation, and
// optimistic column moves.
type TaskService struct {
	engine *Engine
	client *api.Client
}

func NewTaskService(engine *Engine, client *api.Client) *TaskService {
	return &TaskService{engine: engine, client: client}
}

// Refresh reloads the board for a context from the backend.
func (s *TaskService) Refresh(ctx context.Context, contextID string) error {
	tasks, err := s.client.ListTasks(ctx, contextID)
	if err != nil {
		return fmt.Errorf("refresh tasks: %w", err)
	}
	entities := make([]store.Entity, len(tasks))
	for i, t := range tasks {
		entities[i] = t
	}
	s.engine.Load(store.Tasks, entities)
	return nil
}

// Generate asks the backend to generate tasks for the context and
// ingests the result. Generation is a server action, not an optimistic
// one: the records exist by the time they arrive.
func (s *TaskService) Generate(ctx context.Context, contextID, prompt string) ([]task.Task, error) {
	tasks, err := s.client.GenerateTasks(ctx, contextID, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate tasks: %w", err)
	}
	entities := make([]store.Entity, len(tasks))
	for i, t := range tasks {
		if !t.Status.IsValid() {
			t.Status = task.StatusTodo
			tasks[i] = t
		}
		entities[i] = tasks[i]
	}
	s.engine.Ingest(store.Tasks, entities...)
	return tasks, nil
}

// Move transitions a task to another column, optimistically. On
// failure the task lands back in exactly the column it came from.
func (s *TaskService) Move(ctx context.Context, id string, to task.Status) error {
	if !to.IsValid() {
		return fmt.Errorf("invalid task status: %s", to)
	}
	m := Mutation{
		Collection:      store.Tasks,
		ID:              id,
		RequireExisting: true,
		Apply: func(st *store.Store, id string) error {
			ent, ok := st.Get(store.Tasks, id)
			if !ok {
				return nil
			}
			t := ent.(task.Task)
			moved, err := t.WithStatus(to)
			if err != nil {
				return err
			}
			st.Upsert(store.Tasks, moved)
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			return CommitResult{}, s.client.UpdateTaskStatus(ctx, id, to)
		},
	}
	return s.engine.Do(ctx, m)
}
