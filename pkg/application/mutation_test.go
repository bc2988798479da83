package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leadmate/leadmate/pkg/domain/task"
	"github.com/leadmate/leadmate/pkg/store"
)

func moveMutation(id string, to task.Status, request func(ctx context.Context, id string) (CommitResult, error)) Mutation {
	return Mutation{
		Collection:      store.Tasks,
		ID:              id,
		RequireExisting: true,
		Apply: func(st *store.Store, id string) error {
			ent, ok := st.Get(store.Tasks, id)
			if !ok {
				return nil
			}
			t := ent.(task.Task)
			t.Status = to
			st.Upsert(store.Tasks, t)
			return nil
		},
		Request: request,
	}
}

func taskStatus(t *testing.T, s *store.Store, id string) task.Status {
	t.Helper()
	ent, ok := s.Get(store.Tasks, id)
	if !ok {
		t.Fatalf("task %s missing", id)
	}
	return ent.(task.Task).Status
}

func TestDo_OptimisticCommit(t *testing.T) {
	s := store.New()
	s.Upsert(store.Tasks, task.Task{ID: "t1", Status: task.StatusTodo})
	engine := NewEngine(s)

	var observedDuringRequest task.Status
	m := moveMutation("t1", task.StatusInProgress, func(ctx context.Context, id string) (CommitResult, error) {
		// The local change must be visible before the request resolves.
		observedDuringRequest = taskStatus(t, s, "t1")
		return CommitResult{}, nil
	})

	if err := engine.Do(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if observedDuringRequest != task.StatusInProgress {
		t.Errorf("status during request = %s, want inprogress", observedDuringRequest)
	}
	if got := taskStatus(t, s, "t1"); got != task.StatusInProgress {
		t.Errorf("final status = %s, want inprogress", got)
	}
}

func TestDo_RevertRestoresExactPriorColumn(t *testing.T) {
	tests := []struct {
		name string
		from task.Status
		to   task.Status
	}{
		{"todo to inprogress", task.StatusTodo, task.StatusInProgress},
		{"inprogress to completed", task.StatusInProgress, task.StatusCompleted},
		{"completed to todo", task.StatusCompleted, task.StatusTodo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.New()
			s.Upsert(store.Tasks, task.Task{ID: "t1", Status: tt.from})
			engine := NewEngine(s)

			m := moveMutation("t1", tt.to, func(ctx context.Context, id string) (CommitResult, error) {
				return CommitResult{}, errors.New("backend down")
			})
			if err := engine.Do(context.Background(), m); err == nil {
				t.Fatal("expected error")
			}
			if got := taskStatus(t, s, "t1"); got != tt.from {
				t.Errorf("after revert status = %s, want %s", got, tt.from)
			}
		})
	}
}

func TestDo_SameEntitySerialized(t *testing.T) {
	s := store.New()
	s.Upsert(store.Tasks, task.Task{ID: "t1", Status: task.StatusTodo})
	engine := NewEngine(s)

	firstInFlight := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m := moveMutation("t1", task.StatusInProgress, func(ctx context.Context, id string) (CommitResult, error) {
			close(firstInFlight)
			<-release
			return CommitResult{}, nil
		})
		_ = engine.Do(context.Background(), m)
	}()

	<-firstInFlight
	done := make(chan struct{})
	go func() {
		m := moveMutation("t1", task.StatusCompleted, func(ctx context.Context, id string) (CommitResult, error) {
			return CommitResult{}, nil
		})
		_ = engine.Do(context.Background(), m)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second mutation ran while first was in flight")
	default:
	}

	close(release)
	<-done
	wg.Wait()

	if got := taskStatus(t, s, "t1"); got != task.StatusCompleted {
		t.Errorf("final status = %s, want completed", got)
	}
}

func TestDo_DeleteDominatesInFlightUpdate(t *testing.T) {
	for _, updateOutcome := range []error{nil, errors.New("update rejected")} {
		s := store.New()
		s.Upsert(store.Tasks, task.Task{ID: "t1", Status: task.StatusTodo})
		engine := NewEngine(s)

		updateInFlight := make(chan struct{})
		release := make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m := moveMutation("t1", task.StatusInProgress, func(ctx context.Context, id string) (CommitResult, error) {
				close(updateInFlight)
				<-release
				return CommitResult{}, updateOutcome
			})
			_ = engine.Do(context.Background(), m)
		}()

		<-updateInFlight
		go func() {
			defer wg.Done()
			m := Mutation{
				Collection:      store.Tasks,
				ID:              "t1",
				RequireExisting: true,
				Apply: func(st *store.Store, id string) error {
					st.Remove(store.Tasks, id)
					return nil
				},
				Request: func(ctx context.Context, id string) (CommitResult, error) {
					return CommitResult{}, nil
				},
			}
			_ = engine.Do(context.Background(), m)
		}()

		close(release)
		wg.Wait()

		if _, ok := s.Get(store.Tasks, "t1"); ok {
			t.Errorf("update outcome %v: entity present after delete, want absent", updateOutcome)
		}
	}
}

func TestDo_UpdateAfterDeleteIsLocalNoop(t *testing.T) {
	s := store.New()
	engine := NewEngine(s)

	requested := false
	m := moveMutation("gone", task.StatusCompleted, func(ctx context.Context, id string) (CommitResult, error) {
		requested = true
		return CommitResult{}, nil
	})
	if err := engine.Do(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if requested {
		t.Error("request issued for an entity the client no longer holds")
	}
}

func TestDo_CreateCommitSwapsPlaceholder(t *testing.T) {
	s := store.New()
	engine := NewEngine(s)

	m := Mutation{
		Collection: store.Tasks,
		ID:         "local-1",
		Apply: func(st *store.Store, id string) error {
			st.Upsert(store.Tasks, task.Task{ID: id, Status: task.StatusTodo})
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			created := task.Task{ID: "srv-7", Status: task.StatusTodo}
			return CommitResult{
				Commit: func(st *store.Store) { st.Replace(store.Tasks, id, created) },
				NewID:  created.ID,
			}, nil
		},
	}
	if err := engine.Do(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(store.Tasks, "local-1"); ok {
		t.Error("placeholder still present after commit")
	}
	if _, ok := s.Get(store.Tasks, "srv-7"); !ok {
		t.Error("server id missing after commit")
	}
}

func TestDo_DeleteQueuedBehindCreateFollowsServerID(t *testing.T) {
	s := store.New()
	engine := NewEngine(s)

	createInFlight := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m := Mutation{
			Collection: store.Tasks,
			ID:         "local-1",
			Apply: func(st *store.Store, id string) error {
				st.Upsert(store.Tasks, task.Task{ID: id, Status: task.StatusTodo})
				return nil
			},
			Request: func(ctx context.Context, id string) (CommitResult, error) {
				close(createInFlight)
				<-release
				created := task.Task{ID: "srv-7", Status: task.StatusTodo}
				return CommitResult{
					Commit: func(st *store.Store) { st.Replace(store.Tasks, id, created) },
					NewID:  created.ID,
				}, nil
			},
		}
		_ = engine.Do(context.Background(), m)
	}()

	<-createInFlight
	var deleteRequestedID string
	done := make(chan struct{})
	go func() {
		defer close(done)
		m := Mutation{
			Collection:      store.Tasks,
			ID:              "local-1",
			RequireExisting: true,
			Apply: func(st *store.Store, id string) error {
				st.Remove(store.Tasks, id)
				return nil
			},
			Request: func(ctx context.Context, id string) (CommitResult, error) {
				deleteRequestedID = id
				return CommitResult{}, nil
			},
		}
		_ = engine.Do(context.Background(), m)
	}()

	close(release)
	<-done
	wg.Wait()

	if deleteRequestedID != "srv-7" {
		t.Errorf("delete request used id %q, want srv-7", deleteRequestedID)
	}
	if s.Len(store.Tasks) != 0 {
		t.Errorf("store not empty after create-then-delete: %d entities", s.Len(store.Tasks))
	}
}

func TestDo_DeleteAfterFailedCreateSendsNothing(t *testing.T) {
	s := store.New()
	engine := NewEngine(s)

	m := Mutation{
		Collection: store.Tasks,
		ID:         "local-1",
		Apply: func(st *store.Store, id string) error {
			st.Upsert(store.Tasks, task.Task{ID: id})
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			return CommitResult{}, errors.New("create rejected")
		},
	}
	if err := engine.Do(context.Background(), m); err == nil {
		t.Fatal("expected create to fail")
	}

	requested := false
	del := Mutation{
		Collection:      store.Tasks,
		ID:              "local-1",
		RequireExisting: true,
		Apply: func(st *store.Store, id string) error {
			st.Remove(store.Tasks, id)
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			requested = true
			return CommitResult{}, nil
		},
	}
	if err := engine.Do(context.Background(), del); err != nil {
		t.Fatal(err)
	}
	if requested {
		t.Error("delete request issued for an id the server never saw")
	}
	if s.Len(store.Tasks) != 0 {
		t.Error("store not empty")
	}
}

func TestDo_NotifyFiresOnApplyCommitAndRevert(t *testing.T) {
	s := store.New()
	s.Upsert(store.Tasks, task.Task{ID: "t1", Status: task.StatusTodo})
	engine := NewEngine(s)

	var events int
	engine.SetNotify(func(collection store.Collection, id string) { events++ })

	m := moveMutation("t1", task.StatusInProgress, func(ctx context.Context, id string) (CommitResult, error) {
		return CommitResult{}, errors.New("nope")
	})
	_ = engine.Do(context.Background(), m)

	// Once for the optimistic apply, once for the revert.
	if events != 2 {
		t.Errorf("notify fired %d times, want 2", events)
	}
}
