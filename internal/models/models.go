// Package models defines the core domain types for resortops.
package models

import "time"

// TaskType discriminates the five operational activities a task can represent.
type TaskType string

const (
	TypeHousekeeping TaskType = "housekeeping"
	TypeMeal         TaskType = "meal"
	TypeShuttle      TaskType = "shuttle"
	TypeCelebration  TaskType = "celebration"
	TypeHelpRequest  TaskType = "help_request"
)

// TaskTypes lists every task type in display order.
var TaskTypes = []TaskType{TypeHousekeeping, TypeMeal, TypeShuttle, TypeCelebration, TypeHelpRequest}

// IsValid reports whether t is a known task type.
func (t TaskType) IsValid() bool {
	switch t {
	case TypeHousekeeping, TypeMeal, TypeShuttle, TypeCelebration, TypeHelpRequest:
		return true
	default:
		return false
	}
}

// TaskStatus is the coarse status shared by every task type.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid reports whether s is a known coarse status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Priority ranks how urgently a task should be handled.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank orders priorities, higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 2
	case PriorityHigh:
		return 1
	default:
		return 0
	}
}

// Task is one unit of resort operations work.
//
// The domain payload is carried by Payload; the task's type is always the
// payload's type, so a task can never expose another domain's fields.
type Task struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	RoomID               string     `json:"room_id,omitempty"`
	ScheduledTime        time.Time  `json:"scheduled_time"`
	EstimatedDuration    int        `json:"estimated_duration"` // minutes
	Status               TaskStatus `json:"status"`
	AssignedStaffID      string     `json:"assigned_staff_id,omitempty"`
	Priority             Priority   `json:"priority"`
	IsAnniversaryRelated bool       `json:"is_anniversary_related"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Notes                string     `json:"notes,omitempty"`

	Payload Payload `json:"-"`
}

// Type returns the task's type, derived from its payload.
func (t *Task) Type() TaskType {
	if t.Payload == nil {
		return ""
	}
	return t.Payload.Type()
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.Payload != nil {
		c.Payload = t.Payload.clonePayload()
	}
	return &c
}

// Housekeeping returns the cleaning payload, or nil for other types.
func (t *Task) Housekeeping() *HousekeepingPayload {
	p, _ := t.Payload.(*HousekeepingPayload)
	return p
}

// Meal returns the meal payload, or nil for other types.
func (t *Task) Meal() *MealPayload {
	p, _ := t.Payload.(*MealPayload)
	return p
}

// Shuttle returns the shuttle payload, or nil for other types.
func (t *Task) Shuttle() *ShuttlePayload {
	p, _ := t.Payload.(*ShuttlePayload)
	return p
}

// Celebration returns the celebration payload, or nil for other types.
func (t *Task) Celebration() *CelebrationPayload {
	p, _ := t.Payload.(*CelebrationPayload)
	return p
}

// HelpRequest returns the help request payload, or nil for other types.
func (t *Task) HelpRequest() *HelpRequestPayload {
	p, _ := t.Payload.(*HelpRequestPayload)
	return p
}

// Draft carries the caller-supplied fields of a task that is about to be created.
// Identity, timestamps and statuses are assigned by the task board.
type Draft struct {
	Title                string    `json:"title"`
	Description          string    `json:"description,omitempty"`
	RoomID               string    `json:"room_id,omitempty"`
	ScheduledTime        time.Time `json:"scheduled_time"`
	EstimatedDuration    int       `json:"estimated_duration"`
	AssignedStaffID      string    `json:"assigned_staff_id,omitempty"`
	Priority             Priority  `json:"priority,omitempty"`
	IsAnniversaryRelated bool      `json:"is_anniversary_related"`
	Notes                string    `json:"notes,omitempty"`

	Payload Payload `json:"-"`
}

// Type returns the draft's type, derived from its payload.
func (d *Draft) Type() TaskType {
	if d.Payload == nil {
		return ""
	}
	return d.Payload.Type()
}

// PDREntry represents a Process Decision Record for audit.
type PDREntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LogEntry is a handover note on the shift log, optionally tied to a task.
type LogEntry struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags,omitempty"` // comma-separated
	CreatedAt time.Time `json:"created_at"`
}
