// Package team defines the team-member entity.
package team

// Member is a team member derived from backend resume parsing. Members
// are read-only in this client once created.
type Member struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	TechStack []string `json:"tech_stack"`
	ProjectID string   `json:"project_id,omitempty"`
}

// EntityID returns the stable identifier used by the entity store.
func (m Member) EntityID() string { return m.ID }

// HasSkill reports whether the member's tech stack contains the given
// technology.
func (m Member) HasSkill(tech string) bool {
	for _, s := range m.TechStack {
		if s == tech {
			return true
		}
	}
	return false
}
