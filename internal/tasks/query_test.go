package tasks

import (
	"testing"
	"time"

	"github.com/fentz26/resortops/internal/models"
)

func TestList_FilterAndOrder(t *testing.T) {
	b := newTestBoard(t)

	late := mealDraft()
	late.ScheduledTime = baseTime.Add(3 * time.Hour)
	early := cleaningDraft()
	early.ScheduledTime = baseTime.Add(time.Hour)
	party := celebrationDraft()
	party.ScheduledTime = baseTime.Add(2 * time.Hour)

	lateTask := mustCreate(t, b, late)
	earlyTask := mustCreate(t, b, early)
	partyTask := mustCreate(t, b, party)

	all := b.List(Filter{})
	if len(all) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(all))
	}
	wantOrder := []string{earlyTask.ID, partyTask.ID, lateTask.ID}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	meals := b.List(Filter{Type: models.TypeMeal})
	if len(meals) != 1 || meals[0].ID != lateTask.ID {
		t.Errorf("Type filter returned %v", meals)
	}

	anniversary := b.List(Filter{AnniversaryOnly: true})
	if len(anniversary) != 1 || anniversary[0].ID != partyTask.ID {
		t.Errorf("Anniversary filter returned %d tasks", len(anniversary))
	}

	b.SetStatus(earlyTask.ID, models.TaskStatusCompleted)
	active := b.List(Filter{ActiveOnly: true})
	if len(active) != 2 {
		t.Errorf("Expected 2 active tasks, got %d", len(active))
	}

	room := b.List(Filter{RoomID: "204"})
	if len(room) != 1 || room[0].ID != earlyTask.ID {
		t.Errorf("Room filter returned %d tasks", len(room))
	}
}

func TestHelpInbox(t *testing.T) {
	b := newTestBoard(t)

	broadcast := mustCreate(t, b, helpDraft())

	direct := helpDraft()
	direct.Payload = &models.HelpRequestPayload{RequesterID: "STF005", TargetStaffIDs: []string{"STF002"}}
	directTask := mustCreate(t, b, direct)

	other := helpDraft()
	other.Payload = &models.HelpRequestPayload{RequesterID: "STF005", TargetStaffIDs: []string{"STF003"}}
	mustCreate(t, b, other)

	inbox := b.HelpInbox("STF002")
	if len(inbox) != 2 {
		t.Fatalf("Expected 2 requests for STF002, got %d", len(inbox))
	}

	// The requester never sees their own broadcast.
	if got := b.HelpInbox("STF001"); len(got) != 0 {
		t.Errorf("Requester should not see own request, got %d", len(got))
	}

	b.AcceptHelp(broadcast.ID, "STF009")
	inbox = b.HelpInbox("STF002")
	if len(inbox) != 1 || inbox[0].ID != directTask.ID {
		t.Errorf("Accepted requests must leave the inbox, got %d", len(inbox))
	}
}

func TestAttentionReasons(t *testing.T) {
	b := newTestBoard(t)

	shuttle := mustCreate(t, b, shuttleDraft())
	if reasons := AttentionReasons(shuttle); len(reasons) != 0 {
		t.Errorf("Fresh shuttle should need no attention, got %v", reasons)
	}

	started, _ := b.Advance(shuttle.ID, "heading")
	reasons := AttentionReasons(started)
	want := []string{ReasonUnassigned, ReasonNoVehicle, ReasonNoDriver}
	if len(reasons) != len(want) {
		t.Fatalf("Expected %v, got %v", want, reasons)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("Reason %d: expected %s, got %s", i, want[i], reasons[i])
		}
	}

	b.Reassign(shuttle.ID, "STF020")
	staffed, _ := b.ReassignShuttle(shuttle.ID, "VAN-1", "DRV-1")
	if NeedsAttention(staffed) {
		t.Errorf("Fully staffed shuttle flagged: %v", AttentionReasons(staffed))
	}

	meal := mustCreate(t, b, mealDraft())
	flagged, _ := b.ToggleNeedsCheck(meal.ID)
	if !NeedsAttention(flagged) {
		t.Error("Meal needing a check should be flagged")
	}

	if got := b.List(Filter{NeedsAttention: true}); len(got) != 1 || got[0].ID != meal.ID {
		t.Errorf("Attention filter returned %d tasks", len(got))
	}
}

func TestIsOverdue(t *testing.T) {
	task := &models.Task{
		Status:            models.TaskStatusPending,
		ScheduledTime:     baseTime,
		EstimatedDuration: 30,
	}

	if IsOverdue(task, baseTime.Add(29*time.Minute)) {
		t.Error("Task inside its window is not overdue")
	}
	if !IsOverdue(task, baseTime.Add(31*time.Minute)) {
		t.Error("Task past its window should be overdue")
	}

	task.Status = models.TaskStatusCompleted
	if IsOverdue(task, baseTime.Add(time.Hour)) {
		t.Error("Completed task is never overdue")
	}

	if IsOverdue(&models.Task{Status: models.TaskStatusPending}, baseTime) {
		t.Error("Unscheduled task is never overdue")
	}
}
