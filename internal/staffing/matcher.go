package staffing

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fentz26/resortops/internal/models"
)

const skillWeight = 10

// Matcher ranks on-duty staff for a task by the skills its rules require.
type Matcher struct {
	config    Config
	directory *Directory
}

// NewMatcher creates a matcher over the given directory.
func NewMatcher(cfg Config, dir *Directory) *Matcher {
	if dir == nil {
		dir = NewDirectory()
	}
	return &Matcher{config: cfg, directory: dir}
}

// Directory returns the matcher's staff directory.
func (m *Matcher) Directory() *Directory {
	return m.directory
}

// Match suggests staff for a task. workload maps staff ids to the number of
// open tasks they already hold and may be nil.
func (m *Matcher) Match(ctx context.Context, task *models.Task, workload map[string]int) (*MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &MatchResult{TaskID: task.ID, MatchedRules: []string{}}

	required := make(map[string]bool)
	if m.config.Enabled {
		text := strings.ToLower(strings.Join([]string{task.Title, task.Description, task.Notes}, " "))
		for i, rule := range m.config.Rules {
			if !ruleApplies(rule, task.Type(), text) {
				continue
			}
			result.MatchedRules = append(result.MatchedRules, ruleName(i, rule))
			for _, s := range rule.Skills {
				required[s] = true
			}
		}
	}
	for s := range required {
		result.RequiredSkills = append(result.RequiredSkills, s)
	}
	sort.Strings(result.RequiredSkills)

	exclude := ""
	if h := task.HelpRequest(); h != nil {
		exclude = h.RequesterID
	}

	var skilled, others []Candidate
	for _, s := range m.directory.OnDuty() {
		if s.ID == exclude {
			continue
		}
		c := Candidate{Staff: s, Busy: workload[s.ID]}
		for _, skill := range s.Skills {
			if required[skill] {
				c.MatchedSkills = append(c.MatchedSkills, skill)
			}
		}
		c.Score = len(c.MatchedSkills)*skillWeight - c.Busy*m.config.BusyPenalty
		if len(c.MatchedSkills) > 0 {
			skilled = append(skilled, c)
		} else {
			others = append(others, c)
		}
	}

	// Fall back to everyone on duty when nobody has a required skill.
	candidates := skilled
	if len(candidates) == 0 {
		candidates = others
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Staff.ID < candidates[j].Staff.ID
	})
	if limit := m.config.MaxCandidates; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result.Candidates = candidates

	if task.Shuttle() != nil {
		result.Vehicles = m.directory.AvailableVehicles()
	}
	return result, nil
}

func ruleApplies(rule MatchRule, t models.TaskType, text string) bool {
	if len(rule.Types) > 0 {
		typeMatch := false
		for _, rt := range rule.Types {
			if rt == t {
				typeMatch = true
				break
			}
		}
		if !typeMatch {
			return false
		}
		if len(rule.Keywords) == 0 && rule.Pattern == "" {
			return true
		}
	}

	if rule.Pattern != "" {
		if matched, err := regexp.MatchString(rule.Pattern, text); err == nil && matched {
			return true
		}
	}
	for _, kw := range rule.Keywords {
		if containsWord(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func ruleName(i int, rule MatchRule) string {
	switch {
	case len(rule.Keywords) > 0:
		return strings.Join(rule.Keywords, ",")
	case len(rule.Types) > 0:
		names := make([]string, len(rule.Types))
		for j, t := range rule.Types {
			names[j] = string(t)
		}
		return "type:" + strings.Join(names, ",")
	case rule.Pattern != "":
		return "pattern:" + rule.Pattern
	default:
		return fmt.Sprintf("rule %d", i+1)
	}
}

// containsWord checks if text contains keyword as a whole word. Multi-word
// keywords fall back to a substring match.
func containsWord(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	for _, word := range strings.Fields(text) {
		if strings.Trim(word, ".,;:!?\"'()[]{}") == keyword {
			return true
		}
	}
	return false
}
