// Package workflow holds the per-domain status machines of resortops tasks.
//
// Each task type has its own transition table; machines never share states.
// Housekeeping and celebration tasks have no domain status of their own and
// progress through the coarse task status.
package workflow

import "github.com/fentz26/resortops/internal/models"

// State is a domain status value of any task type.
type State string

// machine is an ordered list of states plus the allowed moves out of each.
// The first entry of a move list is the forward action offered to the UI.
type machine struct {
	states []State
	moves  map[State][]State
}

var (
	coarseMachine = machine{
		states: []State{
			State(models.TaskStatusPending),
			State(models.TaskStatusInProgress),
			State(models.TaskStatusCompleted),
		},
		moves: map[State][]State{
			State(models.TaskStatusPending):    {State(models.TaskStatusInProgress)},
			State(models.TaskStatusInProgress): {State(models.TaskStatusCompleted)},
		},
	}

	mealMachine = machine{
		states: []State{
			State(models.MealPreparing),
			State(models.MealServing),
			State(models.MealCompleted),
		},
		moves: map[State][]State{
			State(models.MealPreparing): {State(models.MealServing)},
			State(models.MealServing):   {State(models.MealCompleted)},
		},
	}

	shuttleMachine = machine{
		states: []State{
			State(models.ShuttleNotDeparted),
			State(models.ShuttleHeading),
			State(models.ShuttleArrived),
			State(models.ShuttleBoarded),
			State(models.ShuttleCompleted),
		},
		moves: map[State][]State{
			State(models.ShuttleNotDeparted): {State(models.ShuttleHeading)},
			State(models.ShuttleHeading):     {State(models.ShuttleArrived)},
			State(models.ShuttleArrived):     {State(models.ShuttleBoarded)},
			State(models.ShuttleBoarded):     {State(models.ShuttleCompleted)},
		},
	}

	helpMachine = machine{
		states: []State{
			State(models.HelpPending),
			State(models.HelpAccepted),
			State(models.HelpCompleted),
			State(models.HelpCancelled),
		},
		moves: map[State][]State{
			State(models.HelpPending):  {State(models.HelpAccepted), State(models.HelpCancelled)},
			State(models.HelpAccepted): {State(models.HelpCompleted), State(models.HelpCancelled)},
		},
	}
)

func machineFor(t models.TaskType) (machine, bool) {
	switch t {
	case models.TypeHousekeeping, models.TypeCelebration:
		return coarseMachine, true
	case models.TypeMeal:
		return mealMachine, true
	case models.TypeShuttle:
		return shuttleMachine, true
	case models.TypeHelpRequest:
		return helpMachine, true
	default:
		return machine{}, false
	}
}

// States returns the states of a type's machine in workflow order.
func States(t models.TaskType) []State {
	m, ok := machineFor(t)
	if !ok {
		return nil
	}
	return append([]State(nil), m.states...)
}

// Initial returns the state a freshly created task of type t starts in.
func Initial(t models.TaskType) State {
	m, ok := machineFor(t)
	if !ok {
		return ""
	}
	return m.states[0]
}

// IsValid reports whether s belongs to the machine of type t.
func IsValid(t models.TaskType, s State) bool {
	m, ok := machineFor(t)
	if !ok {
		return false
	}
	for _, st := range m.states {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no way out.
func IsTerminal(t models.TaskType, s State) bool {
	return IsValid(t, s) && len(movesFrom(t, s)) == 0
}

// CanTransition reports whether the machine of type t allows from -> to.
func CanTransition(t models.TaskType, from, to State) bool {
	for _, s := range movesFrom(t, from) {
		if s == to {
			return true
		}
	}
	return false
}

// Next returns the single forward action from the given state.
func Next(t models.TaskType, from State) (State, bool) {
	moves := movesFrom(t, from)
	if len(moves) == 0 {
		return "", false
	}
	return moves[0], true
}

func movesFrom(t models.TaskType, from State) []State {
	m, ok := machineFor(t)
	if !ok {
		return nil
	}
	return m.moves[from]
}

// Current reads the domain status of a task.
func Current(task *models.Task) State {
	switch p := task.Payload.(type) {
	case *models.MealPayload:
		return State(p.MealStatus)
	case *models.ShuttlePayload:
		return State(p.ShuttleStatus)
	case *models.HelpRequestPayload:
		return State(p.HelpStatus)
	case *models.HousekeepingPayload, *models.CelebrationPayload:
		return State(task.Status)
	default:
		return ""
	}
}

// Progress returns the zero-based position of s in the machine of type t,
// or -1 when s is not part of it.
func Progress(t models.TaskType, s State) int {
	m, ok := machineFor(t)
	if !ok {
		return -1
	}
	for i, st := range m.states {
		if st == s {
			return i
		}
	}
	return -1
}
