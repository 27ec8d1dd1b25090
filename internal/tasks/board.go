// Package tasks implements the unified task board: the in-memory owner of all
// resort tasks and the only place their invariants are enforced.
package tasks

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/workflow"
	"github.com/google/uuid"
)

// Board holds the canonical task list. The zero value is not usable; call New.
//
// Every operation runs under one lock and either applies completely or leaves
// the task untouched. Returned tasks are copies.
type Board struct {
	mu    sync.Mutex
	tasks map[string]*models.Task

	now   func() time.Time
	newID func() string
}

// New creates an empty task board.
func New() *Board {
	return &Board{
		tasks: make(map[string]*models.Task),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// Len returns the number of tasks on the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// Create validates a draft of the declared type and adds it to the board.
//
// The new task starts pending, at its domain's initial status, with any
// caller-supplied status fields discarded.
func (b *Board) Create(taskType models.TaskType, d models.Draft) (*models.Task, error) {
	if !taskType.IsValid() {
		return nil, validationf("", "unknown task type %q", taskType)
	}
	if d.Payload == nil {
		return nil, validationf("", "%s task needs a %s payload", taskType, taskType)
	}
	if d.Type() != taskType {
		return nil, validationf("", "%s payload supplied for a %s task", d.Type(), taskType)
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, validationf("", "title is required")
	}
	priority := d.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, validationf("", "unknown priority %q", priority)
	}
	if d.EstimatedDuration < 0 {
		return nil, validationf("", "estimated duration cannot be negative")
	}

	task := &models.Task{
		Title:                title,
		Description:          d.Description,
		RoomID:               strings.TrimSpace(d.RoomID),
		ScheduledTime:        d.ScheduledTime,
		EstimatedDuration:    d.EstimatedDuration,
		Status:               models.TaskStatusPending,
		AssignedStaffID:      strings.TrimSpace(d.AssignedStaffID),
		Priority:             priority,
		IsAnniversaryRelated: d.IsAnniversaryRelated,
		Notes:                d.Notes,
		Payload:              models.ClonePayload(d.Payload),
	}

	if err := validatePayload(task); err != nil {
		return nil, err
	}
	resetDomainStatus(task)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	task.ID = b.newID()
	task.CreatedAt = now
	task.UpdatedAt = now
	b.tasks[task.ID] = task
	return task.Clone(), nil
}

// resetDomainStatus puts a new task at the start of its domain machine.
func resetDomainStatus(t *models.Task) {
	switch p := t.Payload.(type) {
	case *models.MealPayload:
		p.MealStatus = models.MealStatus(workflow.Initial(models.TypeMeal))
	case *models.ShuttlePayload:
		p.ShuttleStatus = models.ShuttleStatus(workflow.Initial(models.TypeShuttle))
	case *models.HelpRequestPayload:
		p.HelpStatus = models.HelpStatus(workflow.Initial(models.TypeHelpRequest))
		p.AcceptedBy = ""
		p.AcceptedAt = nil
	case *models.CelebrationPayload:
		p.CompletionReport = ""
	}
}

// Get returns a copy of the task with the given id.
func (b *Board) Get(id string) (*models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[id]
	if !ok {
		return nil, notFound(id)
	}
	return t.Clone(), nil
}

// Restore replaces the board's contents with previously persisted tasks.
// Nothing is replaced if any task fails validation.
func (b *Board) Restore(tasks []models.Task) error {
	restored := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		t := tasks[i].Clone()
		if t.ID == "" {
			return validationf("", "restored task %d has no id", i)
		}
		if _, dup := restored[t.ID]; dup {
			return validationf(t.ID, "duplicate task id")
		}
		if err := validateRestored(t); err != nil {
			return err
		}
		restored[t.ID] = t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = restored
	return nil
}

// mutate applies fn to a copy of the task and swaps it in only if fn succeeds.
// An fn returning errUnchanged is a silent no-op.
func (b *Board) mutate(id string, fn func(t *models.Task) error) (*models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur, ok := b.tasks[id]
	if !ok {
		return nil, notFound(id)
	}

	next := cur.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errUnchanged) {
			return cur.Clone(), nil
		}
		return nil, err
	}

	next.UpdatedAt = b.now()
	b.tasks[id] = next
	return next.Clone(), nil
}

// complete closes the task out. completed_at is stamped only once.
func complete(t *models.Task, now time.Time) {
	t.Status = models.TaskStatusCompleted
	if t.CompletedAt == nil {
		at := now
		t.CompletedAt = &at
	}
}
