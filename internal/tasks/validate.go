package tasks

import (
	"strings"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/workflow"
)

// validatePayload checks the domain fields a task of its type must carry.
func validatePayload(t *models.Task) error {
	switch p := t.Payload.(type) {
	case *models.HousekeepingPayload:
		if t.RoomID == "" {
			return validationf(t.ID, "housekeeping task needs a room")
		}
		return validateChecklist(t.ID, "cleaning checklist", p.CleaningChecklist)

	case *models.MealPayload:
		if p.GuestCount < 1 {
			return validationf(t.ID, "meal needs a guest count of at least 1")
		}
		return nil

	case *models.ShuttlePayload:
		p.PickupLocation = strings.TrimSpace(p.PickupLocation)
		p.DropoffLocation = strings.TrimSpace(p.DropoffLocation)
		if p.PickupLocation == "" || p.DropoffLocation == "" {
			return validationf(t.ID, "shuttle needs pickup and dropoff locations")
		}
		return nil

	case *models.CelebrationPayload:
		return validateChecklist(t.ID, "celebration items", p.Items)

	case *models.HelpRequestPayload:
		p.RequesterID = strings.TrimSpace(p.RequesterID)
		if p.RequesterID == "" {
			return validationf(t.ID, "help request needs a requester")
		}
		targets := make([]string, 0, len(p.TargetStaffIDs))
		for _, id := range p.TargetStaffIDs {
			if id = strings.TrimSpace(id); id != "" {
				targets = append(targets, id)
			}
		}
		if len(targets) == 0 {
			return validationf(t.ID, "help request needs at least one target staff id or %q", models.AllStaff)
		}
		p.TargetStaffIDs = targets
		return nil

	default:
		return validationf(t.ID, "task has no payload")
	}
}

func validateChecklist(taskID, what string, items []models.ChecklistItem) error {
	seen := make(map[string]bool, len(items))
	for i := range items {
		items[i].Item = strings.TrimSpace(items[i].Item)
		label := items[i].Item
		if label == "" {
			return validationf(taskID, "%s entry %d is empty", what, i+1)
		}
		if seen[label] {
			return validationf(taskID, "%s has duplicate entry %q", what, label)
		}
		seen[label] = true
	}
	return nil
}

// validateRestored checks a persisted task against every board invariant.
func validateRestored(t *models.Task) error {
	if t.Payload == nil {
		return validationf(t.ID, "task has no payload")
	}
	if !t.Status.IsValid() {
		return validationf(t.ID, "unknown status %q", t.Status)
	}
	if !t.Priority.IsValid() {
		return validationf(t.ID, "unknown priority %q", t.Priority)
	}
	if err := validatePayload(t); err != nil {
		return err
	}

	taskType := t.Type()
	cur := workflow.Current(t)
	if !workflow.IsValid(taskType, cur) {
		return validationf(t.ID, "%q is not a %s status", cur, taskType)
	}

	done := workflow.IsTerminal(taskType, cur)
	if done != (t.CompletedAt != nil) {
		return validationf(t.ID, "completed_at does not match status %q", cur)
	}
	if done && t.Status != models.TaskStatusCompleted {
		return validationf(t.ID, "terminal %s task is not completed", taskType)
	}

	if m := t.Meal(); m != nil && m.MealStatus == models.MealCompleted && m.NeedsCheck {
		return validationf(t.ID, "completed meal is flagged for re-check")
	}
	if h := t.HelpRequest(); h != nil && (h.AcceptedBy == "") != (h.AcceptedAt == nil) {
		return validationf(t.ID, "accepted_by and accepted_at must be set together")
	}
	return nil
}
