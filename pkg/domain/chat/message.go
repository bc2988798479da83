// Package chat defines chat messages and per-agent session logs.
package chat

import "time"

// Agent identifies one of the backend assistant services.
type Agent string

const (
	AgentDocQA         Agent = "doc-qa"
	AgentTechStack     Agent = "tech-stack"
	AgentTeamFormation Agent = "team-formation"
	AgentCodeAnalysis  Agent = "code-analysis"
)

// ValidAgents returns all recognized agent identifiers.
func ValidAgents() []Agent {
	return []Agent{AgentDocQA, AgentTechStack, AgentTeamFormation, AgentCodeAnalysis}
}

// IsValid checks if the agent is a recognized value.
func (a Agent) IsValid() bool {
	switch a {
	case AgentDocQA, AgentTechStack, AgentTeamFormation, AgentCodeAnalysis:
		return true
	}
	return false
}

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Key scopes a session to one agent talking about one context. The
// context id is a project id, or the lead id when no project is selected.
type Key struct {
	Agent     Agent
	ContextID string
}

// Message is a single chat entry. Messages are append-only within a
// session; ids assigned by the server are authoritative over local ones.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
