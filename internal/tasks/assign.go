package tasks

import (
	"strings"

	"github.com/fentz26/resortops/internal/models"
)

// Reassign sets the staff member responsible for a task. An empty staffID
// unassigns it. No role or skill check is made here.
func (b *Board) Reassign(id string, staffID string) (*models.Task, error) {
	staffID = strings.TrimSpace(staffID)

	return b.mutate(id, func(t *models.Task) error {
		if t.AssignedStaffID == staffID {
			return errUnchanged
		}
		t.AssignedStaffID = staffID
		return nil
	})
}

// ReassignShuttle sets the vehicle and driver of a shuttle in one mutation.
// Either may be empty while the dispatcher is still configuring the run.
func (b *Board) ReassignShuttle(id string, vehicleID, driverID string) (*models.Task, error) {
	vehicleID = strings.TrimSpace(vehicleID)
	driverID = strings.TrimSpace(driverID)

	return b.mutate(id, func(t *models.Task) error {
		s := t.Shuttle()
		if s == nil {
			return validationf(id, "%s task has no vehicle or driver", t.Type())
		}
		if s.AssignedVehicleID == vehicleID && s.AssignedDriverID == driverID {
			return errUnchanged
		}
		s.AssignedVehicleID = vehicleID
		s.AssignedDriverID = driverID
		return nil
	})
}

// AcceptHelp lets a staff member take a pending help request. The request,
// its acceptance stamp and the task assignment change together.
func (b *Board) AcceptHelp(id string, staffID string) (*models.Task, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return nil, validationf(id, "accepting a help request needs a staff member")
	}

	return b.mutate(id, func(t *models.Task) error {
		h := t.HelpRequest()
		if h == nil {
			return validationf(id, "%s task is not a help request", t.Type())
		}
		if h.HelpStatus != models.HelpPending {
			return transitionf(id, "help request is %s, not pending", h.HelpStatus)
		}

		now := b.now()
		h.HelpStatus = models.HelpAccepted
		h.AcceptedBy = staffID
		h.AcceptedAt = &now
		t.Status = models.TaskStatusInProgress
		t.AssignedStaffID = staffID
		return nil
	})
}

// CompleteHelp closes an accepted help request.
func (b *Board) CompleteHelp(id string) (*models.Task, error) {
	return b.closeHelp(id, models.HelpCompleted, models.HelpAccepted)
}

// CancelHelp withdraws a pending or accepted help request. The task stays on
// the board, closed out of active lists.
func (b *Board) CancelHelp(id string) (*models.Task, error) {
	return b.closeHelp(id, models.HelpCancelled, models.HelpPending, models.HelpAccepted)
}

func (b *Board) closeHelp(id string, to models.HelpStatus, from ...models.HelpStatus) (*models.Task, error) {
	return b.mutate(id, func(t *models.Task) error {
		h := t.HelpRequest()
		if h == nil {
			return validationf(id, "%s task is not a help request", t.Type())
		}

		allowed := false
		for _, s := range from {
			if h.HelpStatus == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return transitionf(id, "help request %s -> %s", h.HelpStatus, to)
		}

		h.HelpStatus = to
		complete(t, b.now())
		return nil
	})
}
