package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Suggestions provides autocomplete for commands and references
type Suggestions struct {
	items       []SuggestionItem
	refs        []SuggestionItem
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
	prefix      string // "/" or "@"
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
	Type        string // "command", "staff", "task"
}

var commandSuggestions = []SuggestionItem{
	{Text: "advance", Description: "Move the selected task one step forward", Type: "command"},
	{Text: "check", Description: "Toggle a checklist item on the selected task", Type: "command"},
	{Text: "recheck", Description: "Flag or clear a meal for re-check", Type: "command"},
	{Text: "assign", Description: "Assign the selected task to a staff member", Type: "command"},
	{Text: "shuttle", Description: "Set vehicle and driver for the selected shuttle", Type: "command"},
	{Text: "accept", Description: "Accept the selected help request", Type: "command"},
	{Text: "done", Description: "Complete the selected help request", Type: "command"},
	{Text: "cancel", Description: "Cancel the selected help request", Type: "command"},
	{Text: "help", Description: "Ask everyone on shift for help", Type: "command"},
	{Text: "note", Description: "Add a handover note", Type: "command"},
	{Text: "search", Description: "Search handover notes", Type: "command"},
	{Text: "filter", Description: "Show one task type, or all", Type: "command"},
	{Text: "as", Description: "Act as a staff member", Type: "command"},
	{Text: "inbox", Description: "Help requests addressed to you", Type: "command"},
	{Text: "attention", Description: "Tasks that need a supervisor", Type: "command"},
	{Text: "board", Description: "Back to the task board", Type: "command"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{
		items:   commandSuggestions,
		visible: false,
	}
}

// Update updates suggestions based on current input
func (s *Suggestions) Update(input string) {
	if input == "" {
		s.visible = false
		s.filtered = nil
		s.prefix = ""
		return
	}

	switch input[0] {
	case '/':
		s.prefix = "/"
		s.items = commandSuggestions
		s.visible = true
		s.filter(strings.ToLower(strings.TrimPrefix(input, "/")))
	default:
		// @ may start any word, e.g. "assign @STF"
		last := input[strings.LastIndex(input, " ")+1:]
		if strings.HasPrefix(last, "@") {
			s.prefix = "@"
			s.items = s.refs
			s.visible = true
			s.filter(strings.ToLower(strings.TrimPrefix(last, "@")))
			return
		}
		s.visible = false
		s.filtered = nil
		s.prefix = ""
	}
}

// SetReferences replaces the staff and task ids offered after "@".
func (s *Suggestions) SetReferences(staff, taskIDs []string) {
	refs := make([]SuggestionItem, 0, len(staff)+len(taskIDs))
	for _, id := range staff {
		refs = append(refs, SuggestionItem{Text: id, Description: "Staff member", Type: "staff"})
	}
	for _, id := range taskIDs {
		refs = append(refs, SuggestionItem{Text: id, Description: "Task", Type: "task"})
	}
	s.refs = refs
}

// Complete returns input with the selected suggestion applied.
func (s *Suggestions) Complete(input string) string {
	sel := s.Selected()
	if sel == nil {
		return input
	}
	if s.prefix == "@" {
		head := input[:strings.LastIndex(input, " ")+1]
		return head + sel.Text + " "
	}
	return sel.Text + " "
}

func (s *Suggestions) filter(query string) {
	if query == "" {
		s.filtered = s.items
		s.selectedIdx = 0
		return
	}

	s.filtered = []SuggestionItem{}
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Text), query) {
			s.filtered = append(s.filtered, item)
		}
	}
	s.selectedIdx = 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	suggestionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6366F1")).
		Padding(0, 1).
		Width(width - 4)

	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#7C3AED")).
		Foreground(lipgloss.Color("#F9FAFB")).
		Bold(true)

	itemStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)

	// Header
	var header string
	switch s.prefix {
	case "/":
		header = "💡 Commands"
	case "@":
		header = "🔗 Staff & Tasks"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Render(header))
	b.WriteString("\n")

	// Show max 5 suggestions
	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			more := len(s.filtered) - maxVisible
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", more)))
			break
		}

		line := ""
		if i == s.selectedIdx {
			line = selectedStyle.Render("▶ " + item.Text)
			if item.Description != "" {
				line += " " + selectedStyle.Render(item.Description)
			}
		} else {
			line = itemStyle.Render("  " + item.Text)
			if item.Description != "" {
				line += " " + descStyle.Render(item.Description)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return suggestionStyle.Render(b.String())
}
