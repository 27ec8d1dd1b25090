package tasks

import (
	"strings"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/workflow"
)

// domainMachine reports whether a type tracks progress in its own payload
// rather than in the coarse status.
func domainMachine(t models.TaskType) bool {
	switch t {
	case models.TypeMeal, models.TypeShuttle, models.TypeHelpRequest:
		return true
	default:
		return false
	}
}

// SetStatus changes only the coarse status of a task.
//
// Setting the current status again is a no-op, so completed_at is never
// re-stamped. A completed task never reopens. Meal, shuttle and help request
// tasks only complete through their own status machines.
func (b *Board) SetStatus(id string, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, validationf(id, "unknown status %q", status)
	}

	return b.mutate(id, func(t *models.Task) error {
		switch {
		case t.Status == status:
			return errUnchanged
		case t.Status == models.TaskStatusCompleted:
			return transitionf(id, "completed task cannot move back to %s", status)
		case status == models.TaskStatusCompleted && domainMachine(t.Type()):
			return transitionf(id, "%s task completes through its %s status, currently %s",
				t.Type(), t.Type(), workflow.Current(t))
		case status == models.TaskStatusCompleted:
			complete(t, b.now())
		default:
			t.Status = status
		}
		return nil
	})
}

// Advance moves a task to the given domain status.
//
// Only the legal successor of the current status is accepted; anything else
// is rejected and leaves the task unchanged. Reaching a terminal status
// completes the task.
func (b *Board) Advance(id string, to string) (*models.Task, error) {
	target := workflow.State(strings.TrimSpace(to))

	return b.mutate(id, func(t *models.Task) error {
		taskType := t.Type()
		if !workflow.IsValid(taskType, target) {
			return validationf(id, "%q is not a %s status", target, taskType)
		}

		from := workflow.Current(t)
		if !workflow.CanTransition(taskType, from, target) {
			return transitionf(id, "%s %s -> %s", taskType, from, target)
		}

		now := b.now()
		switch p := t.Payload.(type) {
		case *models.MealPayload:
			p.MealStatus = models.MealStatus(target)
			if p.MealStatus == models.MealCompleted {
				p.NeedsCheck = false
			}
		case *models.ShuttlePayload:
			p.ShuttleStatus = models.ShuttleStatus(target)
		case *models.HelpRequestPayload:
			if models.HelpStatus(target) == models.HelpAccepted {
				return validationf(id, "accepting a help request needs a staff member")
			}
			p.HelpStatus = models.HelpStatus(target)
		case *models.HousekeepingPayload, *models.CelebrationPayload:
			if target != workflow.State(models.TaskStatusCompleted) {
				t.Status = models.TaskStatus(target)
			}
		}

		if workflow.IsTerminal(taskType, target) {
			complete(t, now)
		} else if t.Status == models.TaskStatusPending {
			t.Status = models.TaskStatusInProgress
		}
		return nil
	})
}

// ToggleChecklistItem flips one item of a cleaning or celebration checklist.
// Tasks without a checklist are left untouched.
func (b *Board) ToggleChecklistItem(id string, item string) (*models.Task, error) {
	item = strings.TrimSpace(item)

	return b.mutate(id, func(t *models.Task) error {
		var list []models.ChecklistItem
		switch p := t.Payload.(type) {
		case *models.HousekeepingPayload:
			list = p.CleaningChecklist
		case *models.CelebrationPayload:
			list = p.Items
		default:
			return errUnchanged
		}

		for i := range list {
			if list[i].Item == item {
				list[i].IsChecked = !list[i].IsChecked
				return nil
			}
		}
		return notFoundf(id, "checklist item %q", item)
	})
}

// ToggleNeedsCheck flags or unflags a meal for re-confirmation. A completed
// meal can no longer be flagged.
func (b *Board) ToggleNeedsCheck(id string) (*models.Task, error) {
	return b.mutate(id, func(t *models.Task) error {
		m := t.Meal()
		if m == nil {
			return validationf(id, "%s task has no re-check flag", t.Type())
		}
		if m.MealStatus == models.MealCompleted {
			return transitionf(id, "meal already completed")
		}
		m.NeedsCheck = !m.NeedsCheck
		return nil
	})
}

// SetCompletionReport records how a celebration went. The report is locked
// once the celebration is completed.
func (b *Board) SetCompletionReport(id string, report string) (*models.Task, error) {
	return b.mutate(id, func(t *models.Task) error {
		c := t.Celebration()
		if c == nil {
			return validationf(id, "%s task has no completion report", t.Type())
		}
		if t.Status == models.TaskStatusCompleted {
			return transitionf(id, "celebration already completed")
		}
		c.CompletionReport = strings.TrimSpace(report)
		return nil
	})
}

// SetNotes replaces the free-text notes of a task.
func (b *Board) SetNotes(id string, notes string) (*models.Task, error) {
	return b.mutate(id, func(t *models.Task) error {
		t.Notes = notes
		return nil
	})
}

// SetPriority changes the priority of a task.
func (b *Board) SetPriority(id string, p models.Priority) (*models.Task, error) {
	if !p.IsValid() {
		return nil, validationf(id, "unknown priority %q", p)
	}
	return b.mutate(id, func(t *models.Task) error {
		if t.Priority == p {
			return errUnchanged
		}
		t.Priority = p
		return nil
	})
}
