package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/staffing"
	"github.com/fentz26/resortops/internal/tasks"
	"github.com/fentz26/resortops/internal/workflow"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)
)

// taskDetail holds the task shown on the detail screen.
type taskDetail struct {
	task       *models.Task
	log        []models.LogEntry
	candidates *staffing.MatchResult
	scroll     int
}

func (d *taskDetail) set(msg taskDetailLoadedMsg) {
	d.task = msg.task
	d.log = msg.log
	d.candidates = msg.candidates
}

func (d *taskDetail) reset() {
	*d = taskDetail{}
}

func (d *taskDetail) scrollBy(n int) {
	d.scroll += n
	if d.scroll < 0 {
		d.scroll = 0
	}
}

// checklist returns the checklist of the shown task, if its type has one.
func (d *taskDetail) checklist() []models.ChecklistItem {
	if d.task == nil {
		return nil
	}
	if h := d.task.Housekeeping(); h != nil {
		return h.CleaningChecklist
	}
	if c := d.task.Celebration(); c != nil {
		return c.Items
	}
	return nil
}

func (d *taskDetail) view(height int) string {
	if d.task == nil {
		return "\n  Loading task details...\n"
	}
	t := d.task

	var b strings.Builder
	b.WriteString(headerStyle.Render(t.Title))
	b.WriteString("\n\n")

	b.WriteString(renderField("ID", t.ID))
	b.WriteString(renderField("Type", string(t.Type())))
	b.WriteString(renderField("Status", formatStage(t.Type(), string(workflow.Current(t)), t.Status == models.TaskStatusCompleted)))
	b.WriteString(renderField("Progress", renderProgress(t)))
	b.WriteString(renderField("Priority", formatPriority(t.Priority)))
	if t.RoomID != "" {
		b.WriteString(renderField("Room", t.RoomID))
	}
	if !t.ScheduledTime.IsZero() {
		b.WriteString(renderField("Scheduled", fmt.Sprintf("%s (%d min)", t.ScheduledTime.Local().Format("Mon 15:04"), t.EstimatedDuration)))
	}
	if t.AssignedStaffID != "" {
		b.WriteString(renderField("Assigned", t.AssignedStaffID))
	}
	if t.Description != "" {
		b.WriteString(renderField("Description", t.Description))
	}
	if t.Notes != "" {
		b.WriteString(renderField("Notes", t.Notes))
	}
	if reasons := tasks.AttentionReasons(t); len(reasons) > 0 {
		b.WriteString(renderField("Attention", statusFailed.Render(strings.Join(reasons, ", "))))
	}

	b.WriteString(renderPayload(t))

	if items := d.checklist(); len(items) > 0 {
		b.WriteString(sectionStyle.Render("Checklist"))
		b.WriteString("\n")
		for _, item := range items {
			box := "[ ]"
			if item.IsChecked {
				box = statusCompleted.Render("[x]")
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", box, item.Item))
		}
	}

	if d.candidates != nil && len(d.candidates.Candidates) > 0 && t.Status != models.TaskStatusCompleted {
		b.WriteString(sectionStyle.Render("Suggested Staff"))
		b.WriteString("\n")
		for i, c := range d.candidates.Candidates {
			if i >= 3 {
				b.WriteString(fmt.Sprintf("  ... and %d more\n", len(d.candidates.Candidates)-3))
				break
			}
			b.WriteString(fmt.Sprintf("  %s %s (%s) busy:%d\n", c.Staff.ID, c.Staff.Name, strings.Join(c.MatchedSkills, ","), c.Busy))
		}
		for _, v := range d.candidates.Vehicles {
			b.WriteString(fmt.Sprintf("  %s %s %d seats\n", v.ID, v.Name, v.Seats))
		}
	}

	if len(d.log) > 0 {
		b.WriteString(sectionStyle.Render("Handover Log"))
		b.WriteString("\n")
		for i, e := range d.log {
			if i >= 5 {
				b.WriteString(fmt.Sprintf("  ... and %d more notes\n", len(d.log)-5))
				break
			}
			author := e.Author
			if author == "" {
				author = "-"
			}
			b.WriteString(fmt.Sprintf("  • %s %s: %s\n", e.CreatedAt.Local().Format("15:04"), author, truncate(e.Content, 60)))
		}
	}

	lines := strings.Split(b.String(), "\n")
	if d.scroll >= len(lines) {
		d.scroll = len(lines) - 1
	}
	visible := lines[d.scroll:]
	if height > 0 && len(visible) > height {
		visible = visible[:height]
	}
	return strings.Join(visible, "\n")
}

func renderPayload(t *models.Task) string {
	var b strings.Builder
	switch p := t.Payload.(type) {
	case *models.MealPayload:
		b.WriteString(renderField("Guests", fmt.Sprintf("%d", p.GuestCount)))
		if len(p.DietaryRestrictions) > 0 {
			b.WriteString(renderField("Dietary", strings.Join(p.DietaryRestrictions, ", ")))
		}
		if p.NeedsCheck {
			b.WriteString(renderField("Re-check", statusFailed.Render("needed")))
		}
	case *models.ShuttlePayload:
		b.WriteString(renderField("Route", p.PickupLocation+" → "+p.DropoffLocation))
		b.WriteString(renderField("Vehicle", orUnassigned(p.AssignedVehicleID)))
		b.WriteString(renderField("Driver", orUnassigned(p.AssignedDriverID)))
	case *models.CelebrationPayload:
		if p.CompletionReport != "" {
			b.WriteString(renderField("Report", p.CompletionReport))
		}
	case *models.HelpRequestPayload:
		b.WriteString(renderField("From", fmt.Sprintf("%s %s", p.RequesterID, p.RequesterName)))
		b.WriteString(renderField("To", strings.Join(p.TargetStaffIDs, ", ")))
		if p.AcceptedBy != "" {
			b.WriteString(renderField("Accepted By", p.AcceptedBy))
		}
	}
	return b.String()
}

func renderProgress(t *models.Task) string {
	states := workflow.States(t.Type())
	pos := workflow.Progress(t.Type(), workflow.Current(t))
	parts := make([]string, len(states))
	for i, s := range states {
		switch {
		case i == pos:
			parts[i] = statusRunning.Render(string(s))
		case i < pos:
			parts[i] = statusCompleted.Render(string(s))
		default:
			parts[i] = labelStyle.Render(string(s))
		}
	}
	return strings.Join(parts, " › ")
}

func orUnassigned(id string) string {
	if id == "" {
		return statusPending.Render("unassigned")
	}
	return id
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
