package tui

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fentz26/resortops/internal/audit"
	"github.com/fentz26/resortops/internal/controlplane"
	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/store"
	"github.com/fentz26/resortops/internal/tasks"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	service := controlplane.NewService(tasks.New(), st, audit.NewPDRWriter(st), nil)
	server := controlplane.NewServer(service, st, "127.0.0.1:0")
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL)
}

func TestClient_ShuttleFlow(t *testing.T) {
	c := newTestClient(t)

	created, err := c.CreateTask(models.Draft{
		Title:             "Airport pickup",
		ScheduledTime:     time.Now().UTC().Add(time.Hour),
		EstimatedDuration: 45,
		Payload: &models.ShuttlePayload{
			PickupLocation:  "Airport T2",
			DropoffLocation: "Main lobby",
		},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	list, err := c.ListTasks(models.TypeShuttle)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("Expected the created shuttle, got %+v", list)
	}
	if others, _ := c.ListTasks(models.TypeMeal); len(others) != 0 {
		t.Errorf("Expected no meals, got %d", len(others))
	}

	moved, err := c.Advance(created.ID, "")
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if got := moved.Shuttle().ShuttleStatus; got != models.ShuttleHeading {
		t.Errorf("Expected heading, got %s", got)
	}

	if _, err := c.Advance(created.ID, string(models.ShuttleBoarded)); err == nil {
		t.Error("Expected skipping a shuttle stage to fail")
	}

	if _, err := c.AssignShuttle(created.ID, "VAN-1", "STF004"); err != nil {
		t.Fatalf("AssignShuttle failed: %v", err)
	}
	got, err := c.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if s := got.Shuttle(); s.AssignedVehicleID != "VAN-1" || s.AssignedDriverID != "STF004" {
		t.Errorf("Shuttle assignment not stored: %+v", s)
	}

	item := newTaskItem(got)
	if item.Stage != string(models.ShuttleHeading) {
		t.Errorf("Expected stage heading, got %s", item.Stage)
	}
	if len(item.Attention) != 1 || item.Attention[0] != tasks.ReasonUnassigned {
		t.Errorf("Expected only unassigned flag, got %v", item.Attention)
	}

	report, err := c.Attention()
	if err != nil {
		t.Fatalf("Attention failed: %v", err)
	}
	if report.Open != 1 || len(report.Alerts) != 1 {
		t.Errorf("Expected one open task with one alert, got %+v", report)
	}

	result, err := c.Candidates(created.ID)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(result.Vehicles) == 0 {
		t.Error("Expected vehicle suggestions for a shuttle")
	}
}

func TestClient_HelpFlow(t *testing.T) {
	c := newTestClient(t)

	req, err := c.CreateTask(models.Draft{
		Title: "Lift a sofa",
		Payload: &models.HelpRequestPayload{
			RequesterID:    "STF001",
			TargetStaffIDs: []string{models.AllStaff},
		},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	inbox, err := c.HelpInbox("STF002")
	if err != nil {
		t.Fatalf("HelpInbox failed: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("Expected 1 request in inbox, got %d", len(inbox))
	}

	if _, err := c.AcceptHelp(req.ID, "STF002"); err != nil {
		t.Fatalf("AcceptHelp failed: %v", err)
	}
	if _, err := c.AcceptHelp(req.ID, "STF003"); err == nil {
		t.Error("Expected a second accept to fail")
	}

	done, err := c.CompleteHelp(req.ID)
	if err != nil {
		t.Fatalf("CompleteHelp failed: %v", err)
	}
	if done.Status != models.TaskStatusCompleted {
		t.Errorf("Expected completed, got %s", done.Status)
	}
}

func TestClient_HandoverLog(t *testing.T) {
	c := newTestClient(t)

	meal, err := c.CreateTask(models.Draft{
		Title:   "Room service",
		RoomID:  "312",
		Payload: &models.MealPayload{GuestCount: 2},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := c.AddLog(meal.ID, "STF003", "Guest asked for no peanuts"); err != nil {
		t.Fatalf("AddLog failed: %v", err)
	}

	entries, err := c.TaskLog(meal.ID)
	if err != nil {
		t.Fatalf("TaskLog failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Author != "STF003" {
		t.Errorf("Unexpected task log: %+v", entries)
	}

	found, err := c.QueryLog("peanuts")
	if err != nil {
		t.Fatalf("QueryLog failed: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("Expected 1 match, got %d", len(found))
	}

	if _, err := c.AddLog("missing", "", "orphan"); err == nil {
		t.Error("Expected note on unknown task to fail")
	}
}

func TestClient_CheckHealth(t *testing.T) {
	c := newTestClient(t)
	if err := c.CheckHealth(); err != nil {
		t.Errorf("Expected healthy daemon, got %v", err)
	}

	down := NewClient("http://127.0.0.1:1")
	if err := down.CheckHealth(); err == nil {
		t.Error("Expected error for unreachable daemon")
	}
}

func TestSuggestions_Commands(t *testing.T) {
	s := NewSuggestions()

	s.Update("/adv")
	if !s.IsVisible() {
		t.Fatal("Expected suggestions for /adv")
	}
	if sel := s.Selected(); sel == nil || sel.Text != "advance" {
		t.Fatalf("Expected advance, got %+v", sel)
	}
	if got := s.Complete("/adv"); got != "advance " {
		t.Errorf("Complete = %q", got)
	}

	s.Update("advance")
	if s.IsVisible() {
		t.Error("Plain words should not open suggestions")
	}
}

func TestSuggestions_References(t *testing.T) {
	s := NewSuggestions()
	s.SetReferences([]string{"STF002", "STF004"}, []string{"task-1"})

	s.Update("assign @stf00")
	if !s.IsVisible() {
		t.Fatal("Expected reference suggestions")
	}
	s.Next()
	if got := s.Complete("assign @stf00"); got != "assign STF004 " {
		t.Errorf("Complete = %q", got)
	}

	s.Update("assign @nobody")
	if s.IsVisible() {
		t.Error("Expected no matches")
	}
}

func TestExecuteCommand_ViewCommands(t *testing.T) {
	a := New("http://127.0.0.1:1", "")

	if cmd := a.executeCommand("inbox"); cmd != nil || !strings.HasPrefix(a.message, "Error") {
		t.Errorf("Inbox without an operator should fail, message %q", a.message)
	}

	a.executeCommand("as @STF002")
	if a.staffID != "STF002" {
		t.Errorf("Expected operator STF002, got %q", a.staffID)
	}

	if cmd := a.executeCommand("filter meal"); cmd == nil {
		t.Error("Expected a reload after filtering")
	}
	if typeFilters[a.filterIdx] != models.TypeMeal {
		t.Errorf("Expected meal filter, got %q", typeFilters[a.filterIdx])
	}

	a.executeCommand("filter spa")
	if !strings.Contains(a.message, "unknown task type") {
		t.Errorf("Expected unknown type message, got %q", a.message)
	}
	if typeFilters[a.filterIdx] != models.TypeMeal {
		t.Error("Unknown type must not change the filter")
	}

	a.executeCommand("attention")
	if a.mode != modeAttention {
		t.Errorf("Expected attention mode, got %s", a.mode)
	}
}
