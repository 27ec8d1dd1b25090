package workflow

import (
	"testing"

	"github.com/fentz26/resortops/internal/models"
)

func TestInitial(t *testing.T) {
	tests := []struct {
		taskType models.TaskType
		want     State
	}{
		{models.TypeHousekeeping, State(models.TaskStatusPending)},
		{models.TypeMeal, State(models.MealPreparing)},
		{models.TypeShuttle, State(models.ShuttleNotDeparted)},
		{models.TypeCelebration, State(models.TaskStatusPending)},
		{models.TypeHelpRequest, State(models.HelpPending)},
		{"laundry", ""},
	}

	for _, tt := range tests {
		if got := Initial(tt.taskType); got != tt.want {
			t.Errorf("Initial(%s) = %q, want %q", tt.taskType, got, tt.want)
		}
	}
}

func TestShuttle_LinearOrderOnly(t *testing.T) {
	states := States(models.TypeShuttle)
	if len(states) != 5 {
		t.Fatalf("Expected 5 shuttle states, got %d", len(states))
	}

	for i, from := range states {
		for j, to := range states {
			want := j == i+1
			if got := CanTransition(models.TypeShuttle, from, to); got != want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestNext_WalksEachMachine(t *testing.T) {
	tests := []struct {
		taskType models.TaskType
		want     []State
	}{
		{models.TypeMeal, []State{"preparing", "serving", "completed"}},
		{models.TypeShuttle, []State{"not_departed", "heading", "arrived", "boarded", "completed"}},
		{models.TypeHousekeeping, []State{"pending", "in_progress", "completed"}},
		{models.TypeHelpRequest, []State{"pending", "accepted", "completed"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.taskType), func(t *testing.T) {
			cur := Initial(tt.taskType)
			got := []State{cur}
			for {
				next, ok := Next(tt.taskType, cur)
				if !ok {
					break
				}
				got = append(got, next)
				cur = next
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Walk = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Walk[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
			if !IsTerminal(tt.taskType, cur) {
				t.Errorf("Expected %s to be terminal", cur)
			}
		})
	}
}

func TestHelpRequest_Branches(t *testing.T) {
	h := models.TypeHelpRequest
	cases := []struct {
		from, to State
		want     bool
	}{
		{"pending", "accepted", true},
		{"pending", "cancelled", true},
		{"pending", "completed", false},
		{"accepted", "completed", true},
		{"accepted", "cancelled", true},
		{"accepted", "pending", false},
		{"completed", "cancelled", false},
		{"cancelled", "pending", false},
	}
	for _, c := range cases {
		if got := CanTransition(h, c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
	if !IsTerminal(h, "cancelled") || !IsTerminal(h, "completed") {
		t.Error("Expected completed and cancelled to be terminal")
	}
}

func TestMachinesAreIndependent(t *testing.T) {
	if IsValid(models.TypeMeal, State(models.ShuttleHeading)) {
		t.Error("Meal machine must not accept shuttle states")
	}
	if CanTransition(models.TypeShuttle, State(models.ShuttleNotDeparted), State(models.MealServing)) {
		t.Error("Shuttle machine must not move into meal states")
	}
	if IsValid(models.TypeHousekeeping, State(models.HelpAccepted)) {
		t.Error("Housekeeping machine must not accept help states")
	}
}

func TestCurrent(t *testing.T) {
	meal := &models.Task{Status: models.TaskStatusInProgress, Payload: &models.MealPayload{MealStatus: models.MealServing}}
	if got := Current(meal); got != "serving" {
		t.Errorf("Current(meal) = %s, want serving", got)
	}

	cleaning := &models.Task{Status: models.TaskStatusInProgress, Payload: &models.HousekeepingPayload{}}
	if got := Current(cleaning); got != "in_progress" {
		t.Errorf("Current(housekeeping) = %s, want in_progress", got)
	}
}

func TestProgress(t *testing.T) {
	if got := Progress(models.TypeShuttle, "arrived"); got != 2 {
		t.Errorf("Progress(arrived) = %d, want 2", got)
	}
	if got := Progress(models.TypeShuttle, "serving"); got != -1 {
		t.Errorf("Progress(serving) = %d, want -1", got)
	}
}
