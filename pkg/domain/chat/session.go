package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session holds the ordered message log for one (agent, context) pair.
// The log is append-only: user messages are appended locally before the
// agent call resolves, assistant replies after, and server history is
// merged in once when the session opens. Sessions are not stored in the
// entity store; the session manager owns them for the life of the
// process.
type Session struct {
	key      Key
	machine  *SessionMachine
	messages []Message
}

// NewSession creates an empty session for the given key.
func NewSession(key Key) (*Session, error) {
	m, err := NewSessionMachine(StateEmpty, key)
	if err != nil {
		return nil, err
	}
	return &Session{key: key, machine: m}, nil
}

// Key returns the (agent, context) pair this session belongs to.
func (s *Session) Key() Key { return s.key }

// State returns the lifecycle state (empty, loading, ready).
func (s *Session) State() string { return s.machine.Current() }

// Open marks the session as loading history. Returns an error if the
// session already opened.
func (s *Session) Open() error {
	return s.machine.Transition(EventOpen)
}

// Fail returns a loading session to empty so it can be reopened.
func (s *Session) Fail() error {
	return s.machine.Transition(EventFailed)
}

// MergeHistory installs server history and marks the session ready.
// Server history is authoritative for any message carrying a
// server-assigned id; messages only present locally (pending sends) are
// kept and appended after the merged history. Merging the same history
// twice yields the same log.
func (s *Session) MergeHistory(history []Message) error {
	if s.machine.Current() == StateEmpty {
		if err := s.machine.Transition(EventOpen); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(history))
	merged := make([]Message, 0, len(history)+len(s.messages))
	for _, m := range history {
		if m.ID != "" && seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}
	for _, m := range s.messages {
		if m.ID != "" && seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}
	s.messages = merged

	if s.machine.Current() == StateLoading {
		if err := s.machine.Transition(EventLoaded); err != nil {
			return err
		}
	}
	return nil
}

// AppendLocal appends a user message before the agent call resolves and
// returns it. The message gets a client-generated id; a sent user
// message is never removed, even if the agent fails to respond.
func (s *Session) AppendLocal(content string) (Message, error) {
	if !s.machine.IsReady() {
		return Message{}, fmt.Errorf("session %s/%s not ready", s.key.Agent, s.key.ContextID)
	}
	m := Message{
		ID:        "local-" + uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, m)
	return m, nil
}

// AppendRemote appends an assistant reply received from the backend.
func (s *Session) AppendRemote(m Message) error {
	if !s.machine.IsReady() {
		return fmt.Errorf("session %s/%s not ready", s.key.Agent, s.key.ContextID)
	}
	if m.ID == "" {
		m.ID = "local-" + uuid.NewString()
	}
	for _, existing := range s.messages {
		if existing.ID == m.ID {
			return nil
		}
	}
	s.messages = append(s.messages, m)
	return nil
}

// AppendError appends a visible assistant-role error bubble. Used when
// the agent call fails; the user's message stays in the log.
func (s *Session) AppendError(text string) {
	s.messages = append(s.messages, Message{
		ID:        "local-" + uuid.NewString(),
		Role:      RoleAssistant,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
}

// Messages returns a copy of the message log in insertion order.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear empties the log and resets the lifecycle so history can be
// merged again.
func (s *Session) Clear() error {
	s.messages = nil
	m, err := NewSessionMachine(StateEmpty, s.key)
	if err != nil {
		return err
	}
	s.machine = m
	return nil
}
