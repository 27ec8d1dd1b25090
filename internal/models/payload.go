package models

import "time"

// Payload is the domain-specific part of a task. It is implemented only by the
// five payload types in this package.
type Payload interface {
	Type() TaskType
	clonePayload() Payload
}

// ClonePayload returns a deep copy of p.
func ClonePayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	return p.clonePayload()
}

// MealStatus tracks a meal service from the kitchen to the table.
type MealStatus string

const (
	MealPreparing MealStatus = "preparing"
	MealServing   MealStatus = "serving"
	MealCompleted MealStatus = "completed"
)

// ShuttleStatus tracks a shuttle run. Stages are strictly ordered.
type ShuttleStatus string

const (
	ShuttleNotDeparted ShuttleStatus = "not_departed"
	ShuttleHeading     ShuttleStatus = "heading"
	ShuttleArrived     ShuttleStatus = "arrived"
	ShuttleBoarded     ShuttleStatus = "boarded"
	ShuttleCompleted   ShuttleStatus = "completed"
)

// HelpStatus tracks a peer help request.
type HelpStatus string

const (
	HelpPending   HelpStatus = "pending"
	HelpAccepted  HelpStatus = "accepted"
	HelpCompleted HelpStatus = "completed"
	HelpCancelled HelpStatus = "cancelled"
)

// AllStaff is the target sentinel for a help request broadcast to everyone.
const AllStaff = "all"

// ChecklistItem is one line of a cleaning or celebration checklist.
type ChecklistItem struct {
	Item      string `json:"item"`
	IsChecked bool   `json:"is_checked"`
}

func cloneChecklist(items []ChecklistItem) []ChecklistItem {
	if items == nil {
		return nil
	}
	return append([]ChecklistItem(nil), items...)
}

// HousekeepingPayload is the payload of a room cleaning task.
type HousekeepingPayload struct {
	CleaningChecklist []ChecklistItem `json:"cleaning_checklist"`
}

func (p *HousekeepingPayload) Type() TaskType { return TypeHousekeeping }

func (p *HousekeepingPayload) clonePayload() Payload {
	return &HousekeepingPayload{CleaningChecklist: cloneChecklist(p.CleaningChecklist)}
}

// MealPayload is the payload of a meal service task.
type MealPayload struct {
	MealStatus          MealStatus `json:"meal_status"`
	NeedsCheck          bool       `json:"needs_check"`
	DietaryRestrictions []string   `json:"dietary_restrictions,omitempty"`
	GuestCount          int        `json:"guest_count"`
}

func (p *MealPayload) Type() TaskType { return TypeMeal }

func (p *MealPayload) clonePayload() Payload {
	c := *p
	if p.DietaryRestrictions != nil {
		c.DietaryRestrictions = append([]string(nil), p.DietaryRestrictions...)
	}
	return &c
}

// ShuttlePayload is the payload of a shuttle transport task. Vehicle and
// driver are independently nullable; an empty string means unassigned.
type ShuttlePayload struct {
	ShuttleStatus     ShuttleStatus `json:"shuttle_status"`
	AssignedVehicleID string        `json:"assigned_vehicle_id,omitempty"`
	AssignedDriverID  string        `json:"assigned_driver_id,omitempty"`
	PickupLocation    string        `json:"pickup_location"`
	DropoffLocation   string        `json:"dropoff_location"`
}

func (p *ShuttlePayload) Type() TaskType { return TypeShuttle }

func (p *ShuttlePayload) clonePayload() Payload {
	c := *p
	return &c
}

// CelebrationPayload is the payload of a celebration preparation task.
type CelebrationPayload struct {
	Items            []ChecklistItem `json:"items"`
	CompletionReport string          `json:"completion_report,omitempty"`
}

func (p *CelebrationPayload) Type() TaskType { return TypeCelebration }

func (p *CelebrationPayload) clonePayload() Payload {
	return &CelebrationPayload{
		Items:            cloneChecklist(p.Items),
		CompletionReport: p.CompletionReport,
	}
}

// HelpRequestPayload is the payload of a peer help request.
type HelpRequestPayload struct {
	RequesterID    string     `json:"requester_id"`
	RequesterName  string     `json:"requester_name"`
	TargetStaffIDs []string   `json:"target_staff_ids"` // or [AllStaff]
	HelpStatus     HelpStatus `json:"help_status"`
	AcceptedBy     string     `json:"accepted_by,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
}

func (p *HelpRequestPayload) Type() TaskType { return TypeHelpRequest }

func (p *HelpRequestPayload) clonePayload() Payload {
	c := *p
	if p.TargetStaffIDs != nil {
		c.TargetStaffIDs = append([]string(nil), p.TargetStaffIDs...)
	}
	if p.AcceptedAt != nil {
		at := *p.AcceptedAt
		c.AcceptedAt = &at
	}
	return &c
}

// Targets reports whether the request is addressed to staffID.
func (p *HelpRequestPayload) Targets(staffID string) bool {
	for _, id := range p.TargetStaffIDs {
		if id == AllStaff || id == staffID {
			return true
		}
	}
	return false
}
