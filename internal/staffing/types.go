// Package staffing keeps the staff and vehicle directory and suggests who
// could take a task. Suggestions are advisory; the task board accepts any
// staff id on reassignment.
package staffing

// StaffMember is an entry in the staff directory.
type StaffMember struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Role   string   `yaml:"role" json:"role"`
	Skills []string `yaml:"skills" json:"skills"`
	OnDuty bool     `yaml:"on_duty" json:"on_duty"`
}

// Vehicle is a shuttle vehicle.
type Vehicle struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Seats     int    `yaml:"seats" json:"seats"`
	Available bool   `yaml:"available" json:"available"`
}

// Candidate is a ranked staff suggestion for a task.
type Candidate struct {
	Staff         StaffMember `json:"staff"`
	Score         int         `json:"score"`
	MatchedSkills []string    `json:"matched_skills,omitempty"`
	Busy          int         `json:"busy"` // open tasks already assigned
}

// MatchResult is the outcome of matching one task against the directory.
type MatchResult struct {
	TaskID         string      `json:"task_id"`
	RequiredSkills []string    `json:"required_skills"`
	MatchedRules   []string    `json:"matched_rules"`
	Candidates     []Candidate `json:"candidates"`
	Vehicles       []Vehicle   `json:"vehicles,omitempty"`
}
