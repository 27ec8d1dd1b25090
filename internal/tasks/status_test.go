package tasks

import (
	"errors"
	"testing"

	"github.com/fentz26/resortops/internal/models"
)

func TestAdvance_ShuttleCannotSkip(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, shuttleDraft())

	_, err := b.Advance(task.ID, "arrived")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	got, _ := b.Get(task.ID)
	if got.Shuttle().ShuttleStatus != models.ShuttleNotDeparted {
		t.Errorf("Expected not_departed, got %s", got.Shuttle().ShuttleStatus)
	}
	if !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Error("Rejected transition must not touch updated_at")
	}
}

func TestAdvance_ShuttleFullRun(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, shuttleDraft())

	steps := []struct {
		to     string
		status models.TaskStatus
	}{
		{"heading", models.TaskStatusInProgress},
		{"arrived", models.TaskStatusInProgress},
		{"boarded", models.TaskStatusInProgress},
		{"completed", models.TaskStatusCompleted},
	}
	for _, step := range steps {
		got, err := b.Advance(task.ID, step.to)
		if err != nil {
			t.Fatalf("Advance to %s failed: %v", step.to, err)
		}
		if string(got.Shuttle().ShuttleStatus) != step.to {
			t.Errorf("Expected %s, got %s", step.to, got.Shuttle().ShuttleStatus)
		}
		if got.Status != step.status {
			t.Errorf("At %s expected coarse %s, got %s", step.to, step.status, got.Status)
		}
	}

	got, _ := b.Get(task.ID)
	if got.CompletedAt == nil {
		t.Error("Completed shuttle must carry completed_at")
	}
	if _, err := b.Advance(task.ID, "heading"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition leaving terminal state, got %v", err)
	}
}

func TestAdvance_ForeignStatus(t *testing.T) {
	b := newTestBoard(t)
	meal := mustCreate(t, b, mealDraft())

	if _, err := b.Advance(meal.ID, "boarded"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestAdvance_CoarseTypes(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, celebrationDraft())

	if _, err := b.Advance(task.ID, "completed"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition skipping in_progress, got %v", err)
	}
	if _, err := b.Advance(task.ID, "in_progress"); err != nil {
		t.Fatalf("Advance to in_progress failed: %v", err)
	}
	got, err := b.Advance(task.ID, "completed")
	if err != nil {
		t.Fatalf("Advance to completed failed: %v", err)
	}
	if got.Status != models.TaskStatusCompleted || got.CompletedAt == nil {
		t.Errorf("Expected completed with timestamp, got %s / %v", got.Status, got.CompletedAt)
	}
}

func TestMealCompletionClearsNeedsCheck(t *testing.T) {
	b := newTestBoard(t)
	meal := mustCreate(t, b, mealDraft())

	got, err := b.ToggleNeedsCheck(meal.ID)
	if err != nil {
		t.Fatalf("ToggleNeedsCheck failed: %v", err)
	}
	if !got.Meal().NeedsCheck {
		t.Fatal("Expected needs_check to be set")
	}

	for _, to := range []string{"serving", "completed"} {
		if _, err := b.Advance(meal.ID, to); err != nil {
			t.Fatalf("Advance to %s failed: %v", to, err)
		}
	}

	got, _ = b.Get(meal.ID)
	if got.Meal().NeedsCheck {
		t.Error("Completed meal must not need a check")
	}

	_, err = b.ToggleNeedsCheck(meal.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on completed meal, got %v", err)
	}
	got, _ = b.Get(meal.ID)
	if got.Meal().NeedsCheck {
		t.Error("needs_check must stay false after completion")
	}
}

func TestToggleNeedsCheck_NotAMeal(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, shuttleDraft())

	if _, err := b.ToggleNeedsCheck(task.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestToggleChecklistItem(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, cleaningDraft())

	first, err := b.ToggleChecklistItem(task.ID, "Change linens")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !first.Housekeeping().CleaningChecklist[0].IsChecked {
		t.Error("Expected item to be checked")
	}
	if first.Housekeeping().CleaningChecklist[1].IsChecked {
		t.Error("Other items must be untouched")
	}

	second, err := b.ToggleChecklistItem(task.ID, "Change linens")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if second.Housekeeping().CleaningChecklist[0].IsChecked {
		t.Error("Toggling twice must restore the original value")
	}

	if _, err := b.ToggleChecklistItem(task.ID, "Vacuum balcony"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestToggleChecklistItem_CelebrationAndOthers(t *testing.T) {
	b := newTestBoard(t)
	party := mustCreate(t, b, celebrationDraft())

	got, err := b.ToggleChecklistItem(party.ID, "Champagne")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !got.Celebration().Items[1].IsChecked {
		t.Error("Expected celebration item to be checked")
	}

	shuttle := mustCreate(t, b, shuttleDraft())
	unchanged, err := b.ToggleChecklistItem(shuttle.ID, "anything")
	if err != nil {
		t.Fatalf("Toggle on shuttle should be a no-op, got %v", err)
	}
	if !unchanged.UpdatedAt.Equal(shuttle.UpdatedAt) {
		t.Error("No-op toggle must not touch updated_at")
	}
}

func TestSetStatus(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, cleaningDraft())

	got, err := b.SetStatus(task.ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatal("Expected completed_at to be stamped")
	}
	stamp := *got.CompletedAt

	again, err := b.SetStatus(task.ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("Repeated SetStatus failed: %v", err)
	}
	if !again.CompletedAt.Equal(stamp) {
		t.Errorf("completed_at re-stamped: %v -> %v", stamp, *again.CompletedAt)
	}

	if _, err := b.SetStatus(task.ID, models.TaskStatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition reopening, got %v", err)
	}
	if _, err := b.SetStatus(task.ID, "paused"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown status, got %v", err)
	}
}

func TestSetStatus_DomainTypesCompleteThroughMachine(t *testing.T) {
	b := newTestBoard(t)

	for _, d := range []models.Draft{mealDraft(), shuttleDraft(), helpDraft()} {
		task := mustCreate(t, b, d)
		if _, err := b.SetStatus(task.ID, models.TaskStatusCompleted); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s: expected ErrInvalidTransition, got %v", task.Type(), err)
		}
		if _, err := b.SetStatus(task.ID, models.TaskStatusInProgress); err != nil {
			t.Errorf("%s: SetStatus(in_progress) failed: %v", task.Type(), err)
		}
	}
}

// Completed tasks carry completed_at and nothing else does.
func TestCompletedAtConsistency(t *testing.T) {
	b := newTestBoard(t)

	meal := mustCreate(t, b, mealDraft())
	b.Advance(meal.ID, "serving")
	b.Advance(meal.ID, "completed")

	house := mustCreate(t, b, cleaningDraft())
	b.SetStatus(house.ID, models.TaskStatusInProgress)

	help := mustCreate(t, b, helpDraft())
	b.CancelHelp(help.ID)

	mustCreate(t, b, shuttleDraft())

	for _, task := range b.Snapshot() {
		done := task.Status == models.TaskStatusCompleted
		if done != (task.CompletedAt != nil) {
			t.Errorf("Task %s (%s): status %s, completed_at %v", task.ID, task.Type(), task.Status, task.CompletedAt)
		}
	}
}

func TestSetCompletionReport(t *testing.T) {
	b := newTestBoard(t)
	party := mustCreate(t, b, celebrationDraft())

	got, err := b.SetCompletionReport(party.ID, "  Guests loved it  ")
	if err != nil {
		t.Fatalf("SetCompletionReport failed: %v", err)
	}
	if got.Celebration().CompletionReport != "Guests loved it" {
		t.Errorf("Unexpected report %q", got.Celebration().CompletionReport)
	}

	b.SetStatus(party.ID, models.TaskStatusCompleted)
	if _, err := b.SetCompletionReport(party.ID, "edit"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition after completion, got %v", err)
	}

	meal := mustCreate(t, b, mealDraft())
	if _, err := b.SetCompletionReport(meal.ID, "x"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for meal, got %v", err)
	}
}

func TestSetPriorityAndNotes(t *testing.T) {
	b := newTestBoard(t)
	task := mustCreate(t, b, mealDraft())

	got, err := b.SetPriority(task.ID, models.PriorityUrgent)
	if err != nil {
		t.Fatalf("SetPriority failed: %v", err)
	}
	if got.Priority != models.PriorityUrgent {
		t.Errorf("Expected urgent, got %s", got.Priority)
	}
	if _, err := b.SetPriority(task.ID, "meh"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}

	got, err = b.SetNotes(task.ID, "No nuts")
	if err != nil {
		t.Fatalf("SetNotes failed: %v", err)
	}
	if got.Notes != "No nuts" {
		t.Errorf("Expected notes to be set, got %q", got.Notes)
	}
}
