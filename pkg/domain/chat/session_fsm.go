package chat

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Session lifecycle states. Untyped string constants for
// statekit.StateID compatibility.
const (
	StateEmpty   = "empty"
	StateLoading = "loading"
	StateReady   = "ready"
)

// Lifecycle events.
const (
	EventOpen   = "open"
	EventLoaded = "loaded"
	EventFailed = "failed"
)

// sessionContext carries state data for the machine.
type sessionContext struct {
	Key Key
}

// SessionMachine guards the session lifecycle: a session must pass
// through loading (history fetch) before it accepts appends.
type SessionMachine struct {
	interpreter *statekit.Interpreter[sessionContext]
}

// NewSessionMachine builds a lifecycle machine starting in the given
// state. New sessions start at StateEmpty.
func NewSessionMachine(initialState string, key Key) (*SessionMachine, error) {
	builder := statekit.NewMachine[sessionContext]("chat-session").
		WithInitial(statekit.StateID(initialState)).
		WithContext(sessionContext{Key: key})

	builder.State(StateEmpty).
		On(EventOpen).Target(StateLoading).
		Done()

	builder.State(StateLoading).
		On(EventLoaded).Target(StateReady).
		On(EventFailed).Target(StateEmpty).
		Done()

	builder.State(StateReady).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build session machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &SessionMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the session lifecycle forward.
func (sm *SessionMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}
	return fmt.Errorf("event %q is not allowed in session state %q", event, before)
}

// Current returns the current lifecycle state.
func (sm *SessionMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// IsReady reports whether the session accepts appends.
func (sm *SessionMachine) IsReady() bool {
	return sm.Current() == StateReady
}
