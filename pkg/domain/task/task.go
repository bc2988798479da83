// Package task defines the task entity used by the kanban board.
package task

import (
	"fmt"
	"time"
)

// Status is the board column a task sits in. A task is always in exactly
// one column.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusCompleted  Status = "completed"
)

// ValidStatuses returns all recognized status values in board order.
func ValidStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusCompleted}
}

// IsValid checks if the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority indicates task urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is a recognized value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work on the board. Tasks are created in bulk by the
// backend generation call and mutated only by whole-status transitions.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    Status     `json:"status"`
	Priority  Priority   `json:"priority"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	ProjectID string     `json:"project_id,omitempty"`
}

// EntityID returns the stable identifier used by the entity store.
func (t Task) EntityID() string { return t.ID }

// WithStatus returns a copy moved to the given column. The status field
// is replaced atomically; no other field changes.
func (t Task) WithStatus(s Status) (Task, error) {
	if !s.IsValid() {
		return t, fmt.Errorf("invalid task status: %s", s)
	}
	t.Status = s
	return t, nil
}
