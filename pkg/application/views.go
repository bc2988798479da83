package application

import (
	"time"

	"github.com/leadmate/leadmate/pkg/domain/analytics"
	"github.com/leadmate/leadmate/pkg/domain/document"
	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/domain/task"
	"github.com/leadmate/leadmate/pkg/domain/team"
	"github.com/leadmate/leadmate/pkg/store"
)

// Views adapts the entity store's current snapshot to the pure
// aggregate functions in the analytics package. Every call recomputes
// from whatever the store holds right now; there is no cached state to
// go stale.
type Views struct {
	store *store.Store
}

func NewViews(s *store.Store) *Views {
	return &Views{store: s}
}

// Projects returns all cached projects in insertion order.
func (v *Views) Projects() []project.Project {
	entities := v.store.List(store.Projects)
	out := make([]project.Project, 0, len(entities))
	for _, e := range entities {
		if p, ok := e.(project.Project); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tasks returns all cached tasks in insertion order.
func (v *Views) Tasks() []task.Task {
	entities := v.store.List(store.Tasks)
	out := make([]task.Task, 0, len(entities))
	for _, e := range entities {
		if t, ok := e.(task.Task); ok {
			out = append(out, t)
		}
	}
	return out
}

// Documents returns all cached documents in insertion order.
func (v *Views) Documents() []document.Document {
	entities := v.store.List(store.Documents)
	out := make([]document.Document, 0, len(entities))
	for _, e := range entities {
		if d, ok := e.(document.Document); ok {
			out = append(out, d)
		}
	}
	return out
}

// Members returns all cached team members in insertion order.
func (v *Views) Members() []team.Member {
	entities := v.store.List(store.Members)
	out := make([]team.Member, 0, len(entities))
	for _, e := range entities {
		if m, ok := e.(team.Member); ok {
			out = append(out, m)
		}
	}
	return out
}

// ProjectsByStatus partitions the cached projects.
func (v *Views) ProjectsByStatus() analytics.ProjectBuckets {
	return analytics.ProjectsByStatus(v.Projects())
}

// TaskColumns partitions the cached tasks into board columns.
func (v *Views) TaskColumns() (analytics.Columns, analytics.Counts) {
	return analytics.TaskColumns(v.Tasks())
}

// DashboardStats computes the dashboard summary as of now.
func (v *Views) DashboardStats(now time.Time) analytics.Stats {
	return analytics.DashboardStats(v.Projects(), v.Tasks(), now)
}
