package tasks

import (
	"sort"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/workflow"
)

// Filter narrows a task listing. Zero fields match everything.
type Filter struct {
	Type            models.TaskType
	Status          models.TaskStatus
	StaffID         string
	RoomID          string
	AnniversaryOnly bool
	NeedsAttention  bool
	ActiveOnly      bool // excludes completed tasks
}

// Match reports whether t passes the filter.
func (f Filter) Match(t *models.Task) bool {
	if f.Type != "" && t.Type() != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.StaffID != "" && t.AssignedStaffID != f.StaffID {
		return false
	}
	if f.RoomID != "" && t.RoomID != f.RoomID {
		return false
	}
	if f.AnniversaryOnly && !t.IsAnniversaryRelated {
		return false
	}
	if f.ActiveOnly && t.Status == models.TaskStatusCompleted {
		return false
	}
	if f.NeedsAttention && !NeedsAttention(t) {
		return false
	}
	return true
}

// List returns copies of the matching tasks ordered by scheduled time.
func (b *Board) List(f Filter) []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if f.Match(t) {
			out = append(out, *t.Clone())
		}
	}
	sortTimeline(out)
	return out
}

// Snapshot returns copies of every task on the board.
func (b *Board) Snapshot() []models.Task {
	return b.List(Filter{})
}

// HelpInbox returns the pending help requests addressed to staffID, leaving
// out the ones the staff member raised.
func (b *Board) HelpInbox(staffID string) []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []models.Task
	for _, t := range b.tasks {
		h := t.HelpRequest()
		if h == nil || h.HelpStatus != models.HelpPending {
			continue
		}
		if h.RequesterID == staffID || !h.Targets(staffID) {
			continue
		}
		out = append(out, *t.Clone())
	}
	sortTimeline(out)
	return out
}

func sortTimeline(ts []models.Task) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if !a.ScheduledTime.Equal(b.ScheduledTime) {
			return a.ScheduledTime.Before(b.ScheduledTime)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Attention reasons.
const (
	ReasonUnassigned = "unassigned"
	ReasonNoVehicle  = "no_vehicle"
	ReasonNoDriver   = "no_driver"
	ReasonNeedsCheck = "needs_check"
	ReasonOverdue    = "overdue"
)

// AttentionReasons lists why an open task needs a supervisor's eye. Progress
// past the first stage without an assignee is allowed but flagged.
func AttentionReasons(t *models.Task) []string {
	if t.Status == models.TaskStatusCompleted {
		return nil
	}

	var reasons []string
	started := workflow.Progress(t.Type(), workflow.Current(t)) > 0
	if started && t.AssignedStaffID == "" {
		reasons = append(reasons, ReasonUnassigned)
	}
	if s := t.Shuttle(); s != nil && started {
		if s.AssignedVehicleID == "" {
			reasons = append(reasons, ReasonNoVehicle)
		}
		if s.AssignedDriverID == "" {
			reasons = append(reasons, ReasonNoDriver)
		}
	}
	if m := t.Meal(); m != nil && m.NeedsCheck {
		reasons = append(reasons, ReasonNeedsCheck)
	}
	return reasons
}

// NeedsAttention reports whether AttentionReasons is non-empty.
func NeedsAttention(t *models.Task) bool {
	return len(AttentionReasons(t)) > 0
}

// IsOverdue reports whether an open task has run past its scheduled end.
// Tasks without a schedule are never overdue.
func IsOverdue(t *models.Task, now time.Time) bool {
	if t.Status == models.TaskStatusCompleted || t.ScheduledTime.IsZero() {
		return false
	}
	end := t.ScheduledTime.Add(time.Duration(t.EstimatedDuration) * time.Minute)
	return now.After(end)
}
