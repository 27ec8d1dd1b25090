package staffing

import (
	"context"
	"testing"

	"github.com/fentz26/resortops/internal/models"
)

func newTestMatcher(t *testing.T, cfg Config) *Matcher {
	t.Helper()
	dir, err := NewDirectoryFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewDirectoryFromConfig() error = %v", err)
	}
	return NewMatcher(cfg, dir)
}

func candidateIDs(r *MatchResult) []string {
	ids := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		ids[i] = c.Staff.ID
	}
	return ids
}

func TestMatcher_ByTypeAndKeyword(t *testing.T) {
	m := newTestMatcher(t, DefaultConfig())

	tests := []struct {
		name   string
		task   *models.Task
		expect []string
	}{
		{
			name:   "housekeeping",
			task:   &models.Task{ID: "t1", Title: "Clean room 204", Payload: &models.HousekeepingPayload{}},
			expect: []string{"STF002"},
		},
		{
			name:   "meal with allergy",
			task:   &models.Task{ID: "t2", Title: "Dinner", Description: "Guest has a nut allergy", Payload: &models.MealPayload{GuestCount: 2}},
			expect: []string{"STF003"},
		},
		{
			name:   "shuttle",
			task:   &models.Task{ID: "t3", Title: "Airport", Payload: &models.ShuttlePayload{}},
			expect: []string{"STF004"},
		},
		{
			name: "help request falls back to everyone but the requester",
			task: &models.Task{ID: "t4", Title: "Need a hand", Payload: &models.HelpRequestPayload{
				RequesterID: "STF001", TargetStaffIDs: []string{models.AllStaff},
			}},
			expect: []string{"STF002", "STF003", "STF004", "STF005"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := m.Match(context.Background(), tt.task, nil)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			got := candidateIDs(result)
			if len(got) != len(tt.expect) {
				t.Fatalf("Expected %v, got %v", tt.expect, got)
			}
			for i := range tt.expect {
				if got[i] != tt.expect[i] {
					t.Errorf("Candidate %d: expected %s, got %s", i, tt.expect[i], got[i])
				}
			}
		})
	}
}

func TestMatcher_ShuttleVehicles(t *testing.T) {
	m := newTestMatcher(t, DefaultConfig())

	result, err := m.Match(context.Background(), &models.Task{ID: "t1", Payload: &models.ShuttlePayload{}}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(result.Vehicles) != 3 {
		t.Fatalf("Expected 3 vehicles, got %d", len(result.Vehicles))
	}
	if result.Vehicles[0].ID != "VAN-1" || result.Vehicles[2].ID != "CART-1" {
		t.Errorf("Vehicles not ordered by seats: %v", result.Vehicles)
	}

	meal, _ := m.Match(context.Background(), &models.Task{ID: "t2", Payload: &models.MealPayload{}}, nil)
	if len(meal.Vehicles) != 0 {
		t.Error("Only shuttles get vehicle suggestions")
	}
}

func TestMatcher_WorkloadPenalty(t *testing.T) {
	m := newTestMatcher(t, DefaultConfig())
	task := &models.Task{ID: "t1", Title: "Anniversary dinner setup", Payload: &models.CelebrationPayload{}}

	idle, _ := m.Match(context.Background(), task, nil)
	if got := candidateIDs(idle); len(got) < 2 || got[0] != "STF005" {
		t.Fatalf("Expected STF005 first when idle, got %v", got)
	}

	busy, _ := m.Match(context.Background(), task, map[string]int{"STF005": 5})
	if got := candidateIDs(busy); got[0] != "STF001" {
		t.Errorf("Expected STF001 first when STF005 is busy, got %v", got)
	}
	if busy.Candidates[1].Busy != 5 {
		t.Errorf("Expected busy count 5, got %d", busy.Candidates[1].Busy)
	}
}

func TestMatcher_Limits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.MaxCandidates = 2
	m := newTestMatcher(t, cfg)

	result, err := m.Match(context.Background(), &models.Task{ID: "t1", Payload: &models.MealPayload{}}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(result.MatchedRules) != 0 {
		t.Errorf("Disabled matcher should not apply rules, got %v", result.MatchedRules)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(result.Candidates))
	}
}

func TestMatcher_OffDutyExcluded(t *testing.T) {
	m := newTestMatcher(t, DefaultConfig())
	if err := m.Directory().SetOnDuty("STF004", false); err != nil {
		t.Fatalf("SetOnDuty() error = %v", err)
	}

	result, _ := m.Match(context.Background(), &models.Task{ID: "t1", Payload: &models.ShuttlePayload{}}, nil)
	for _, c := range result.Candidates {
		if c.Staff.ID == "STF004" {
			t.Error("Off-duty driver should not be suggested")
		}
	}
}

func TestMatcher_CancelledContext(t *testing.T) {
	m := newTestMatcher(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Match(ctx, &models.Task{ID: "t1", Payload: &models.MealPayload{}}, nil); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestDirectory_BasicOperations(t *testing.T) {
	d := NewDirectory()

	if err := d.Register(StaffMember{Name: "Nobody"}); err == nil {
		t.Error("Register() should reject empty id")
	}
	if err := d.Register(StaffMember{ID: "STF100", Skills: []string{"cleaning"}, OnDuty: true}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := d.Get("STF100")
	if !ok {
		t.Fatal("Get() should find registered staff")
	}
	got.Skills[0] = "mutated"
	again, _ := d.Get("STF100")
	if again.Skills[0] != "cleaning" {
		t.Error("Get() must return a copy")
	}

	if err := d.SetOnDuty("missing", true); err == nil {
		t.Error("SetOnDuty() should fail for unknown staff")
	}
	d.SetOnDuty("STF100", false)
	if len(d.OnDuty()) != 0 {
		t.Error("Expected nobody on duty")
	}
	if d.Count() != 1 || len(d.List()) != 1 {
		t.Errorf("Expected 1 staff member, got %d", d.Count())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"zero candidates", func(c *Config) { c.MaxCandidates = 0 }, true},
		{"negative penalty", func(c *Config) { c.BusyPenalty = -1 }, true},
		{"duplicate staff", func(c *Config) { c.Staff = append(c.Staff, c.Staff[0]) }, true},
		{"reserved id", func(c *Config) { c.Staff = append(c.Staff, StaffMember{ID: models.AllStaff}) }, true},
		{"rule without skills", func(c *Config) { c.Rules = append(c.Rules, MatchRule{Keywords: []string{"x"}}) }, true},
		{"rule with bad type", func(c *Config) {
			c.Rules = append(c.Rules, MatchRule{Types: []models.TaskType{"laundry"}, Skills: []string{"x"}})
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
