package staffing

import (
	"fmt"

	"github.com/fentz26/resortops/internal/models"
)

// Config holds the staff directory and matching rules. It is embedded in the
// resortops config file under "staffing".
type Config struct {
	// Enabled toggles skill matching. When off every on-duty staff member is
	// offered with a zero score.
	Enabled bool `yaml:"enabled"`
	// MaxCandidates caps the number of suggestions per task.
	MaxCandidates int `yaml:"max_candidates"`
	// BusyPenalty is subtracted from a score per open task the staff member holds.
	BusyPenalty int `yaml:"busy_penalty"`
	// Staff is the initial directory.
	Staff []StaffMember `yaml:"staff"`
	// Vehicles is the shuttle fleet.
	Vehicles []Vehicle `yaml:"vehicles"`
	// Rules map task types and keywords to required skills.
	Rules []MatchRule `yaml:"rules"`
}

// MatchRule adds skills to a task's requirements when it applies.
type MatchRule struct {
	// Types match on task type. Empty matches any type.
	Types []models.TaskType `yaml:"types,omitempty"`
	// Keywords match whole words in the title, description or notes.
	Keywords []string `yaml:"keywords,omitempty"`
	// Pattern is an optional regex matched against the same text.
	Pattern string `yaml:"pattern,omitempty"`
	// Skills are required when the rule applies.
	Skills []string `yaml:"skills"`
}

// DefaultConfig returns a small directory and the usual rules per department.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MaxCandidates: 5,
		BusyPenalty:   3,
		Staff: []StaffMember{
			{ID: "STF001", Name: "Front Desk", Role: "reception", Skills: []string{"guest_relations"}, OnDuty: true},
			{ID: "STF002", Name: "Housekeeping Lead", Role: "housekeeping", Skills: []string{"cleaning", "turndown"}, OnDuty: true},
			{ID: "STF003", Name: "Chef de Partie", Role: "kitchen", Skills: []string{"cooking", "allergens"}, OnDuty: true},
			{ID: "STF004", Name: "Shuttle Driver", Role: "transport", Skills: []string{"driving"}, OnDuty: true},
			{ID: "STF005", Name: "Events Coordinator", Role: "events", Skills: []string{"decoration", "guest_relations"}, OnDuty: true},
		},
		Vehicles: []Vehicle{
			{ID: "VAN-1", Name: "Resort Van 1", Seats: 8, Available: true},
			{ID: "VAN-2", Name: "Resort Van 2", Seats: 8, Available: true},
			{ID: "CART-1", Name: "Golf Cart", Seats: 4, Available: true},
		},
		Rules: []MatchRule{
			{Types: []models.TaskType{models.TypeHousekeeping}, Skills: []string{"cleaning"}},
			{Types: []models.TaskType{models.TypeMeal}, Skills: []string{"cooking"}},
			{Types: []models.TaskType{models.TypeShuttle}, Skills: []string{"driving"}},
			{Types: []models.TaskType{models.TypeCelebration}, Skills: []string{"decoration"}},
			{Keywords: []string{"allergy", "allergen", "gluten", "nut"}, Skills: []string{"allergens"}},
			{Keywords: []string{"turndown", "turn-down"}, Skills: []string{"turndown"}},
			{Keywords: []string{"vip", "anniversary", "complaint"}, Skills: []string{"guest_relations"}},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be at least 1")
	}
	if c.BusyPenalty < 0 {
		return fmt.Errorf("busy_penalty cannot be negative")
	}

	seen := make(map[string]bool, len(c.Staff))
	for _, s := range c.Staff {
		if s.ID == "" {
			return fmt.Errorf("staff entry %q has no id", s.Name)
		}
		if s.ID == models.AllStaff {
			return fmt.Errorf("staff id %q is reserved", models.AllStaff)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate staff id %q", s.ID)
		}
		seen[s.ID] = true
	}
	for _, v := range c.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("vehicle %q has no id", v.Name)
		}
	}
	for i, r := range c.Rules {
		if len(r.Skills) == 0 {
			return fmt.Errorf("rule %d has no skills", i+1)
		}
		for _, t := range r.Types {
			if !t.IsValid() {
				return fmt.Errorf("rule %d: unknown task type %q", i+1, t)
			}
		}
	}
	return nil
}
