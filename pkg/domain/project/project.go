// Package project defines the project entity and its status value object.
package project

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a project. Any status may follow any
// other; the backend imposes no transition order.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on-hold"
	StatusCancelled Status = "cancelled"
)

// ValidStatuses returns all recognized status values.
func ValidStatuses() []Status {
	return []Status{StatusPlanning, StatusActive, StatusCompleted, StatusOnHold, StatusCancelled}
}

// IsValid checks if the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// IsClosed returns true if the project is no longer being worked on.
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Project is a server-owned project record.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Progress    int        `json:"progress"`
	TeamLeadID  string     `json:"team_lead_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EntityID returns the stable identifier used by the entity store.
func (p Project) EntityID() string { return p.ID }

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// WithProgress returns a copy with progress set, clamped to [0,100].
func (p Project) WithProgress(v int) Project {
	p.Progress = ClampProgress(v)
	return p
}

// WithStatus returns a copy with the given status.
func (p Project) WithStatus(s Status) (Project, error) {
	if !s.IsValid() {
		return p, fmt.Errorf("invalid project status: %s", s)
	}
	p.Status = s
	return p, nil
}

// DueWithin reports whether the deadline falls inside [from, to],
// inclusive of both endpoints. Projects without a deadline never match.
func (p Project) DueWithin(from, to time.Time) bool {
	if p.Deadline == nil {
		return false
	}
	d := *p.Deadline
	return !d.Before(from) && !d.After(to)
}
