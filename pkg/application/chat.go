package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/chat"
)

// ChatService manages one session per (agent, context) pair. Sessions
// live in memory for the life of the process; switching agent or
// context never discards another session's history. Session logs are
// owned here, not in the entity store.
type ChatService struct {
	client *api.Client

	mu       sync.Mutex
	sessions map[chat.Key]*chat.Session
	current  map[chat.Agent]string
}

func NewChatService(client *api.Client) *ChatService {
	return &ChatService{
		client:   client,
		sessions: make(map[chat.Key]*chat.Session),
		current:  make(map[chat.Agent]string),
	}
}

func (s *ChatService) key(agent chat.Agent, projectID string) chat.Key {
	return chat.Key{Agent: agent, ContextID: s.client.Session().ContextID(projectID)}
}

func (s *ChatService) session(key chat.Key) (*chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		var err error
		sess, err = chat.NewSession(key)
		if err != nil {
			return nil, err
		}
		s.sessions[key] = sess
	}
	s.current[key.Agent] = key.ContextID
	return sess, nil
}

// Open selects the (agent, context) session, fetching and merging
// server history on first open. Reopening a ready session is a no-op
// beyond marking it current.
func (s *ChatService) Open(ctx context.Context, agent chat.Agent, projectID string) ([]chat.Message, error) {
	if !agent.IsValid() {
		return nil, fmt.Errorf("unknown agent: %s", agent)
	}
	sess, err := s.session(s.key(agent, projectID))
	if err != nil {
		return nil, err
	}

	if sess.State() == chat.StateReady {
		return sess.Messages(), nil
	}

	if err := sess.Open(); err != nil {
		return nil, err
	}
	history, err := s.client.ChatHistory(ctx, agent, sess.Key().ContextID)
	if err != nil {
		// Back to empty so the next open retries the fetch.
		_ = sess.Fail()
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	if err := sess.MergeHistory(history); err != nil {
		return nil, err
	}
	return sess.Messages(), nil
}

// Send appends the user message, calls the agent, and appends either
// the reply or a visible error bubble. The user message survives agent
// failure; the returned error lets the caller show a banner as well.
func (s *ChatService) Send(ctx context.Context, agent chat.Agent, projectID, text string) ([]chat.Message, error) {
	if _, err := s.Open(ctx, agent, projectID); err != nil {
		return nil, err
	}
	sess, err := s.session(s.key(agent, projectID))
	if err != nil {
		return nil, err
	}

	if _, err := sess.AppendLocal(text); err != nil {
		return nil, err
	}

	reply, sendErr := s.client.SendAgentMessage(ctx, agent, sess.Key().ContextID, text)
	if sendErr != nil {
		sess.AppendError(api.UserMessage(sendErr))
		return sess.Messages(), fmt.Errorf("agent %s: %w", agent, sendErr)
	}
	if err := sess.AppendRemote(reply); err != nil {
		return sess.Messages(), err
	}
	return sess.Messages(), nil
}

// Messages returns the log for the (agent, context) session without
// touching the network.
func (s *ChatService) Messages(agent chat.Agent, projectID string) []chat.Message {
	s.mu.Lock()
	sess, ok := s.sessions[s.key(agent, projectID)]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Messages()
}

// Clear empties only the given agent's current-context session. Other
// agents and other contexts keep their history.
func (s *ChatService) Clear(agent chat.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contextID, ok := s.current[agent]
	if !ok {
		return nil
	}
	sess, ok := s.sessions[chat.Key{Agent: agent, ContextID: contextID}]
	if !ok {
		return nil
	}
	return sess.Clear()
}
