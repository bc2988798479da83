package application

import (
	"context"
	"fmt"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/team"
	"github.com/leadmate/leadmate/pkg/store"
)

// TeamService handles team members. Members are created by resume
// upload and read-only afterward, so there are no optimistic mutations
// here.
type TeamService struct {
	engine *Engine
	client *api.Client
}

func NewTeamService(engine *Engine, client *api.Client) *TeamService {
	return &TeamService{engine: engine, client: client}
}

// Refresh reloads a project's team members from the backend.
func (s *TeamService) Refresh(ctx context.Context, projectID string) error {
	members, err := s.client.ListMembers(ctx, projectID)
	if err != nil {
		return fmt.Errorf("refresh team: %w", err)
	}
	entities := make([]store.Entity, len(members))
	for i, m := range members {
		entities[i] = m
	}
	s.engine.Load(store.Members, entities)
	return nil
}

// AddFromResume uploads a resume, lets the backend parse it into a
// member record, and ingests the result.
func (s *TeamService) AddFromResume(ctx context.Context, projectID string, resume api.Upload) (team.Member, error) {
	member, err := s.client.CreateMemberFromResume(ctx, projectID, resume)
	if err != nil {
		return team.Member{}, fmt.Errorf("add member from resume: %w", err)
	}
	s.engine.Ingest(store.Members, member)
	return member, nil
}
