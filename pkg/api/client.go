// Package api implements the typed HTTP client for the LeadMate
// backend. All network access in the module goes through this package;
// response-shape normalization and agent-payload validation happen here
// so the rest of the client sees canonical data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/leadmate/leadmate/pkg/domain/chat"
	"github.com/leadmate/leadmate/pkg/domain/document"
	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/domain/task"
	"github.com/leadmate/leadmate/pkg/domain/team"
)

// Client is the typed LeadMate API client. Read-only list calls retry
// with backoff; mutations are attempted exactly once so the optimistic
// engine's revert protocol stays sound.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	session      *Session
	retryCfg     retry.Config
	agentTimeout time.Duration
	logf         func(format string, args ...any)
}

type options struct {
	httpClient   *http.Client
	maxAttempts  int
	initialDelay time.Duration
	agentTimeout time.Duration
	logf         func(format string, args ...any)
}

func defaultOptions() options {
	return options{
		httpClient:   &http.Client{},
		maxAttempts:  3,
		initialDelay: 500 * time.Millisecond,
		agentTimeout: 120 * time.Second,
		logf:         log.Printf,
	}
}

// Option configures the client.
type Option func(*options)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRetry configures retry behaviour for read-only calls.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		o.maxAttempts = maxAttempts
		o.initialDelay = initialDelay
	}
}

// WithAgentTimeout bounds how long a single agent chat call may run.
func WithAgentTimeout(d time.Duration) Option {
	return func(o *options) { o.agentTimeout = d }
}

// WithLogf sets the diagnostic logger used for partial-data fallbacks.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *options) { o.logf = logf }
}

// NewClient creates a client bound to the given session.
func NewClient(baseURL string, session *Session, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: o.httpClient,
		session:    session,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
		agentTimeout: o.agentTimeout,
		logf:         o.logf,
	}
}

// Session returns the auth session the client is bound to.
func (c *Client) Session() *Session { return c.session }

// do performs one request and decodes the response body into out. Non-2xx
// responses become *APIError with the backend's message extracted when
// the body carries one.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	raw, err := c.doRaw(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(endpoint, "/"), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close after read

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}
	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		switch {
		case structured.Message != "":
			apiErr.Message = structured.Message
		case structured.Error != "":
			apiErr.Message = structured.Error
		case structured.Detail != "":
			apiErr.Message = structured.Detail
		}
	}
	return apiErr
}

// getList fetches and normalizes a list endpoint with retry. A response
// that decodes but matches no known shape is logged and degrades to an
// empty list instead of failing the whole view.
func getList[T any](ctx context.Context, c *Client, endpoint string, fields ...string) ([]T, error) {
	r := retry.New[[]byte](c.retryCfg)
	raw, err := r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return c.doRaw(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw, fields...)
	if err != nil {
		if errors.Is(err, ErrUnexpectedShape) {
			c.logf("leadmate: %s returned unexpected shape, treating as empty: %v", endpoint, err)
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

// --- Auth ---

// Login authenticates, resolves the user behind the token, and
// initializes the session. The user's company id becomes the tenancy
// key for chat and task calls.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var loginResp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, http.MethodPost, "api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &loginResp)
	if err != nil {
		return User{}, fmt.Errorf("login: %w", err)
	}
	token := loginResp.Token
	if token == "" {
		token = loginResp.AccessToken
	}
	if token == "" {
		return User{}, fmt.Errorf("login: %w: no token in response", ErrUnexpectedShape)
	}

	c.session.Init(token, User{})
	user, err := c.Whoami(ctx)
	if err != nil {
		c.session.Clear()
		return User{}, fmt.Errorf("resolve user: %w", err)
	}
	c.session.Init(token, user)
	return user, nil
}

// Whoami resolves the current bearer token to a user record.
func (c *Client) Whoami(ctx context.Context) (User, error) {
	if !c.session.Authenticated() {
		return User{}, ErrNotAuthenticated
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "api/auth/me", nil)
	if err != nil {
		return User{}, err
	}
	return decodeObject[User](raw, "user", "data")
}

// Logout clears the session. The token is held in memory only, so
// nothing else needs cleanup.
func (c *Client) Logout() {
	c.session.Clear()
}

// --- Projects ---

// ListProjects returns all projects visible to the user.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	return getList[project.Project](ctx, c, "api/projects", "projects", "items", "data")
}

// CreateProject creates a project and returns the server record with
// its assigned id.
func (c *Client) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	raw, err := c.doRaw(ctx, http.MethodPost, "api/projects", p)
	if err != nil {
		return project.Project{}, err
	}
	return decodeObject[project.Project](raw, "project", "data")
}

// ProjectUpdate is a partial field set for project updates. Nil fields
// are left untouched by the server.
type ProjectUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Status      *project.Status `json:"status,omitempty"`
	TeamLeadID  *string         `json:"team_lead_id,omitempty"`
	Progress    *int            `json:"progress,omitempty"`
}

// UpdateProject applies a partial update and returns the server record.
func (c *Client) UpdateProject(ctx context.Context, id string, update ProjectUpdate) (project.Project, error) {
	raw, err := c.doRaw(ctx, http.MethodPatch, "api/projects/"+url.PathEscape(id), update)
	if err != nil {
		return project.Project{}, err
	}
	return decodeObject[project.Project](raw, "project", "data")
}

// DeleteProject deletes a project by id.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "api/projects/"+url.PathEscape(id), nil, nil)
}

// --- Tasks ---

// ListTasks returns the board tasks for a (company, lead) context.
func (c *Client) ListTasks(ctx context.Context, contextID string) ([]task.Task, error) {
	endpoint := fmt.Sprintf("api/tasks?company_id=%s&context_id=%s",
		url.QueryEscape(c.session.User().CompanyID), url.QueryEscape(contextID))
	return getList[task.Task](ctx, c, endpoint, "tasks", "items", "data")
}

// GenerateTasks asks the backend to generate a batch of tasks for the
// context. The agent payload is schema-validated before decode.
func (c *Client) GenerateTasks(ctx context.Context, contextID, prompt string) ([]task.Task, error) {
	raw, err := c.doRaw(ctx, http.MethodPost, "api/tasks/generate", map[string]string{
		"company_id": c.session.User().CompanyID,
		"context_id": contextID,
		"prompt":     prompt,
	})
	if err != nil {
		return nil, err
	}

	payload := raw
	if list, err := decodeList[json.RawMessage](raw, "tasks", "items", "data"); err == nil {
		if joined, err := json.Marshal(list); err == nil {
			payload = joined
		}
	}
	if err := validateGeneratedTasks(payload); err != nil {
		return nil, fmt.Errorf("generated tasks rejected: %w", err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(payload, &tasks); err != nil {
		return nil, fmt.Errorf("decode generated tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskStatus replaces a task's status. The transition is atomic:
// only the status field travels.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status task.Status) error {
	return c.do(ctx, http.MethodPatch, "api/tasks/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)}, nil)
}

// --- Documents ---

// ListDocuments returns the documents uploaded under a project.
func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]document.Document, error) {
	endpoint := "api/projects/" + url.PathEscape(projectID) + "/documents"
	return getList[document.Document](ctx, c, endpoint, "documents", "items", "data")
}

// Upload is one file in a multipart upload.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// UploadDocuments uploads one or more files under a project and returns
// the created records.
func (c *Client) UploadDocuments(ctx context.Context, projectID string, files []Upload) ([]document.Document, error) {
	endpoint := "api/projects/" + url.PathEscape(projectID) + "/documents"
	raw, err := c.doMultipart(ctx, endpoint, "files", files)
	if err != nil {
		return nil, err
	}
	docs, err := decodeList[document.Document](raw, "documents", "items", "data")
	if err != nil {
		return nil, fmt.Errorf("decode uploaded documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument deletes a document by id. Deletion is immediate; there
// is no undo.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "api/documents/"+url.PathEscape(id), nil, nil)
}

// AnalyzeDocuments triggers backend re-analysis of a project's
// documents.
func (c *Client) AnalyzeDocuments(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodPost, "api/projects/"+url.PathEscape(projectID)+"/documents/analyze", nil, nil)
}

// --- Team ---

// ListMembers returns the team members attached to a project.
func (c *Client) ListMembers(ctx context.Context, projectID string) ([]team.Member, error) {
	endpoint := "api/projects/" + url.PathEscape(projectID) + "/team"
	return getList[team.Member](ctx, c, endpoint, "members", "team", "items", "data")
}

// CreateMemberFromResume uploads a resume; the backend parses it into a
// member record, which is schema-validated before decode.
func (c *Client) CreateMemberFromResume(ctx context.Context, projectID string, resume Upload) (team.Member, error) {
	endpoint := "api/projects/" + url.PathEscape(projectID) + "/team/resume"
	raw, err := c.doMultipart(ctx, endpoint, "resume", []Upload{resume})
	if err != nil {
		return team.Member{}, err
	}
	if err := validateParsedMember(raw); err != nil {
		return team.Member{}, fmt.Errorf("parsed member rejected: %w", err)
	}
	var m team.Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return team.Member{}, fmt.Errorf("decode member: %w", err)
	}
	return m, nil
}

func (c *Client) doMultipart(ctx context.Context, endpoint, field string, files []Upload) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+strings.TrimLeft(endpoint, "/"), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req)
}

// --- Chat ---

type agentReply struct {
	ID        string    `json:"id"`
	Reply     string    `json:"reply"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// SendAgentMessage sends a user message to one of the agent endpoints
// and returns the assistant reply. The call runs under a bounded
// timeout: agent backends can hang on long LLM calls, and a chat send
// must resolve so the session can append either the reply or an error
// bubble.
func (c *Client) SendAgentMessage(ctx context.Context, agent chat.Agent, contextID, text string) (chat.Message, error) {
	if !agent.IsValid() {
		return chat.Message{}, fmt.Errorf("unknown agent: %s", agent)
	}

	t := timeout.New[chat.Message](timeout.Config{DefaultTimeout: c.agentTimeout})
	return t.Execute(ctx, c.agentTimeout, func(ctx context.Context) (chat.Message, error) {
		raw, err := c.doRaw(ctx, http.MethodPost, "api/agents/"+url.PathEscape(string(agent))+"/chat", map[string]string{
			"message":    text,
			"company_id": c.session.User().CompanyID,
			"context_id": contextID,
		})
		if err != nil {
			return chat.Message{}, err
		}
		reply, err := decodeObject[agentReply](raw, "data", "result")
		if err != nil {
			return chat.Message{}, err
		}
		content := reply.Reply
		if content == "" {
			content = reply.Response
		}
		if content == "" {
			content = reply.Message
		}
		ts := reply.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		return chat.Message{ID: reply.ID, Role: chat.RoleAssistant, Content: content, Timestamp: ts}, nil
	})
}

// ChatHistory fetches the stored history for an (agent, context) pair.
func (c *Client) ChatHistory(ctx context.Context, agent chat.Agent, contextID string) ([]chat.Message, error) {
	endpoint := fmt.Sprintf("api/chat/history?agent=%s&company_id=%s&context_id=%s",
		url.QueryEscape(string(agent)),
		url.QueryEscape(c.session.User().CompanyID),
		url.QueryEscape(contextID))
	return getList[chat.Message](ctx, c, endpoint, "messages", "history", "items", "data")
}
