package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/store"
)

// ProjectService handles project CRUD with optimistic updates.
type ProjectService struct {
	engine *Engine
	client *api.Client
}

func NewProjectService(engine *Engine, client *api.Client) *ProjectService {
	return &ProjectService{engine: engine, client: client}
}

// Refresh reloads all projects from the backend into the store.
func (s *ProjectService) Refresh(ctx context.Context) error {
	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("refresh projects: %w", err)
	}
	entities := make([]store.Entity, len(projects))
	for i, p := range projects {
		entities[i] = p
	}
	s.engine.Load(store.Projects, entities)
	return nil
}

// Create adds a project optimistically under a client-generated
// placeholder id, which the commit swaps for the server's id. Returns
// the placeholder so the caller can track the entity through the swap.
func (s *ProjectService) Create(ctx context.Context, p project.Project) (string, error) {
	if !p.Status.IsValid() {
		p.Status = project.StatusPlanning
	}
	p.Progress = project.ClampProgress(p.Progress)
	placeholder := "local-" + uuid.NewString()

	m := Mutation{
		Collection: store.Projects,
		ID:         placeholder,
		Apply: func(st *store.Store, id string) error {
			local := p
			local.ID = id
			st.Upsert(store.Projects, local)
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			created, err := s.client.CreateProject(ctx, p)
			if err != nil {
				return CommitResult{}, err
			}
			return CommitResult{
				Commit: func(st *store.Store) {
					st.Replace(store.Projects, id, created)
				},
				NewID: created.ID,
			}, nil
		},
	}
	return placeholder, s.engine.Do(ctx, m)
}

// Update applies a partial update optimistically. If the project was
// deleted while this update waited its turn, the update becomes a
// no-op: the delete wins.
func (s *ProjectService) Update(ctx context.Context, id string, update api.ProjectUpdate) error {
	m := Mutation{
		Collection:      store.Projects,
		ID:              id,
		RequireExisting: true,
		Apply: func(st *store.Store, id string) error {
			ent, ok := st.Get(store.Projects, id)
			if !ok {
				return nil
			}
			p := ent.(project.Project)
			applyProjectUpdate(&p, update)
			st.Upsert(store.Projects, p)
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			updated, err := s.client.UpdateProject(ctx, id, update)
			if err != nil {
				return CommitResult{}, err
			}
			return CommitResult{
				Commit: func(st *store.Store) {
					st.Upsert(store.Projects, updated)
				},
			}, nil
		},
	}
	return s.engine.Do(ctx, m)
}

func applyProjectUpdate(p *project.Project, u api.ProjectUpdate) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Deadline != nil {
		p.Deadline = u.Deadline
	}
	if u.Status != nil && u.Status.IsValid() {
		p.Status = *u.Status
	}
	if u.TeamLeadID != nil {
		p.TeamLeadID = *u.TeamLeadID
	}
	if u.Progress != nil {
		p.Progress = project.ClampProgress(*u.Progress)
	}
}

// SetStatus transitions a project to the given status. Transitions are
// unordered: any status may follow any other.
func (s *ProjectService) SetStatus(ctx context.Context, id string, status project.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid project status: %s", status)
	}
	return s.Update(ctx, id, api.ProjectUpdate{Status: &status})
}

// SetProgress updates a project's progress, clamped to [0,100].
func (s *ProjectService) SetProgress(ctx context.Context, id string, progress int) error {
	clamped := project.ClampProgress(progress)
	return s.Update(ctx, id, api.ProjectUpdate{Progress: &clamped})
}

// Delete removes a project optimistically. Deleting an entity the
// client no longer holds stays local and sends nothing.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	m := Mutation{
		Collection:      store.Projects,
		ID:              id,
		RequireExisting: true,
		Apply: func(st *store.Store, id string) error {
			st.Remove(store.Projects, id)
			return nil
		},
		Request: func(ctx context.Context, id string) (CommitResult, error) {
			return CommitResult{}, s.client.DeleteProject(ctx, id)
		},
	}
	return s.engine.Do(ctx, m)
}
