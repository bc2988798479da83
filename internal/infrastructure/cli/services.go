package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/leadmate/leadmate/internal/infrastructure/config"
	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/application"
	"github.com/leadmate/leadmate/pkg/store"
)

// appServices bundles everything a command needs: the API client bound
// to the session, the entity store behind the mutation engine, and the
// per-collection services.
type appServices struct {
	Config    config.Config
	Session   *api.Session
	Client    *api.Client
	Store     *store.Store
	Engine    *application.Engine
	Views     *application.Views
	Projects  *application.ProjectService
	Tasks     *application.TaskService
	Documents *application.DocumentService
	Team      *application.TeamService
	Chat      *application.ChatService
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func loadServices() (*appServices, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return buildServices(cfg)
}

func buildServices(cfg config.Config) (*appServices, error) {
	session := api.NewSession()
	client := api.NewClient(cfg.BaseURL, session,
		api.WithAgentTimeout(cfg.AgentTimeout()),
		api.WithLogf(log.Printf),
	)

	s := store.New()
	engine := application.NewEngine(s)

	return &appServices{
		Config:    cfg,
		Session:   session,
		Client:    client,
		Store:     s,
		Engine:    engine,
		Views:     application.NewViews(s),
		Projects:  application.NewProjectService(engine, client),
		Tasks:     application.NewTaskService(engine, client),
		Documents: application.NewDocumentService(engine, client),
		Team:      application.NewTeamService(engine, client),
		Chat:      application.NewChatService(client),
	}, nil
}

// authenticate installs the bearer token from LEADMATE_TOKEN and
// resolves the user behind it. Commands that talk to the backend call
// this before doing anything else.
func (s *appServices) authenticate(ctx context.Context) error {
	token := os.Getenv("LEADMATE_TOKEN")
	if token == "" {
		return fmt.Errorf("not logged in: run 'leadmate login' and export LEADMATE_TOKEN")
	}
	s.Session.Init(token, api.User{})
	user, err := s.Client.Whoami(ctx)
	if err != nil {
		s.Session.Clear()
		return fmt.Errorf("resolve session: %w", err)
	}
	s.Session.Init(token, user)
	return nil
}

// loadAuthedServices is the common preamble for commands needing a
// logged-in session.
func loadAuthedServices(ctx context.Context) (*appServices, error) {
	services, err := loadServices()
	if err != nil {
		return nil, err
	}
	if err := services.authenticate(ctx); err != nil {
		return nil, err
	}
	return services, nil
}
