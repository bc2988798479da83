package project

import (
	"testing"
	"time"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusPlanning, true},
		{StatusActive, true},
		{StatusCompleted, true},
		{StatusOnHold, true},
		{StatusCancelled, true},
		{Status("archived"), false},
		{Status(""), false},
	}
	for _, tt := range tests {
		if got := tt.status.IsValid(); got != tt.valid {
			t.Errorf("Status(%q).IsValid() = %v, want %v", tt.status, got, tt.valid)
		}
	}
}

func TestWithStatus_AnyOrderAllowed(t *testing.T) {
	// Transitions are deliberately unordered: completed back to
	// planning is legal.
	p := Project{ID: "p1", Status: StatusCompleted}
	p, err := p.WithStatus(StatusPlanning)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusPlanning {
		t.Errorf("status = %s", p.Status)
	}
	if _, err := p.WithStatus(Status("bogus")); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestClampProgress(t *testing.T) {
	tests := []struct{ in, want int }{
		{-10, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		if got := ClampProgress(tt.in); got != tt.want {
			t.Errorf("ClampProgress(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDueWithin_InclusiveEndpoints(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(7 * 24 * time.Hour)

	at := func(v time.Time) Project {
		return Project{Deadline: &v}
	}

	if !at(from).DueWithin(from, to) {
		t.Error("deadline exactly at window start should match")
	}
	if !at(to).DueWithin(from, to) {
		t.Error("deadline exactly at window end should match")
	}
	if at(from.Add(-time.Second)).DueWithin(from, to) {
		t.Error("deadline one second early should not match")
	}
	if at(to.Add(time.Second)).DueWithin(from, to) {
		t.Error("deadline one second late should not match")
	}
	if (Project{}).DueWithin(from, to) {
		t.Error("missing deadline should not match")
	}
}
