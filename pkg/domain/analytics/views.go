// Package analytics computes read-only aggregates over the entity
// cache: board columns, project buckets, dashboard stats, and commit
// histograms. Every function is a pure function of its inputs;
// aggregates are recomputed on each call rather than maintained
// incrementally, which is the right trade at dashboard data sizes.
package analytics

import (
	"sort"
	"time"

	"github.com/leadmate/leadmate/pkg/domain/project"
	"github.com/leadmate/leadmate/pkg/domain/task"
)

// ProjectBuckets partitions projects for the role-based project lists.
// Order within each bucket follows the input (store insertion) order.
type ProjectBuckets struct {
	Active    []project.Project
	Completed []project.Project
	Other     []project.Project
}

// ProjectsByStatus partitions projects into active/completed/other.
func ProjectsByStatus(projects []project.Project) ProjectBuckets {
	var b ProjectBuckets
	for _, p := range projects {
		switch p.Status {
		case project.StatusActive:
			b.Active = append(b.Active, p)
		case project.StatusCompleted:
			b.Completed = append(b.Completed, p)
		default:
			b.Other = append(b.Other, p)
		}
	}
	return b
}

// Columns holds the kanban board partition with per-column counts.
type Columns struct {
	Todo       []task.Task
	InProgress []task.Task
	Completed  []task.Task
}

// Counts summarizes the board.
type Counts struct {
	Todo       int
	InProgress int
	Completed  int
}

// TaskColumns partitions tasks into the three board columns. Every task
// lands in exactly one column; unknown statuses fall back to todo so a
// bad record stays visible instead of vanishing.
func TaskColumns(tasks []task.Task) (Columns, Counts) {
	var c Columns
	for _, t := range tasks {
		switch t.Status {
		case task.StatusInProgress:
			c.InProgress = append(c.InProgress, t)
		case task.StatusCompleted:
			c.Completed = append(c.Completed, t)
		default:
			c.Todo = append(c.Todo, t)
		}
	}
	return c, Counts{
		Todo:       len(c.Todo),
		InProgress: len(c.InProgress),
		Completed:  len(c.Completed),
	}
}

// Stats is the dashboard summary, derived and never stored.
type Stats struct {
	TotalProjects     int
	ActiveProjects    int
	CompletedProjects int
	DueThisWeek       int
	TotalTasks        int
	CompletedTasks    int
}

// DashboardStats counts projects by status and projects whose deadline
// falls within [now, now+7days], inclusive of both endpoints.
func DashboardStats(projects []project.Project, tasks []task.Task, now time.Time) Stats {
	s := Stats{TotalProjects: len(projects), TotalTasks: len(tasks)}
	windowEnd := now.Add(7 * 24 * time.Hour)
	for _, p := range projects {
		switch p.Status {
		case project.StatusActive:
			s.ActiveProjects++
		case project.StatusCompleted:
			s.CompletedProjects++
		}
		if p.DueWithin(now, windowEnd) {
			s.DueThisWeek++
		}
	}
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			s.CompletedTasks++
		}
	}
	return s
}

// Commit is a timestamped repository event used by the analysis view.
type Commit struct {
	SHA       string
	Author    string
	Message   string
	Timestamp time.Time
}

// DayCount is one histogram bucket: a UTC calendar day and its count.
type DayCount struct {
	Day   string // YYYY-MM-DD
	Count int
}

// CommitHistogram buckets commits by UTC calendar day and returns the
// buckets in ascending day order. Days with no commits are omitted; the
// histogram is sparse rather than padded with fabricated zero days.
func CommitHistogram(commits []Commit) []DayCount {
	if len(commits) == 0 {
		return nil
	}
	byDay := make(map[string]int)
	for _, c := range commits {
		byDay[c.Timestamp.UTC().Format("2006-01-02")]++
	}
	out := make([]DayCount, 0, len(byDay))
	for day, n := range byDay {
		out = append(out, DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
