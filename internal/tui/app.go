// Package tui provides the interactive terminal UI for resortops.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/workflow"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#0E7490")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	statusPending   = lipgloss.NewStyle().Foreground(warningColor)
	statusRunning   = lipgloss.NewStyle().Foreground(secondaryColor)
	statusCompleted = lipgloss.NewStyle().Foreground(successColor)
	statusFailed    = lipgloss.NewStyle().Foreground(errorColor)
)

// RefreshInterval is how often the open view is reloaded.
const RefreshInterval = 15 * time.Second

const (
	modeBoard     = "board"
	modeDetail    = "detail"
	modeInbox     = "inbox"
	modeAttention = "attention"
)

var typeFilters = append([]models.TaskType{""}, models.TaskTypes...)

// App is the main TUI application model.
type App struct {
	client       *Client
	staffID      string
	tasks        []TaskItem
	inbox        []TaskItem
	report       *monitor.Report
	detail       taskDetail
	selectedIdx  int
	input        textinput.Model
	width        int
	height       int
	mode         string
	prevMode     string
	message      string
	filterIdx    int
	loading      bool
	daemonOnline bool
	suggestions  *Suggestions
}

// New creates a new TUI application. staffID is the operator, used for help
// requests and handover notes; it may be empty and set later with "as".
func New(apiAddr, staffID string) *App {
	ti := textinput.New()
	ti.Placeholder = "Type / for commands: advance | check <item> | accept | assign @STF | note <text>"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 80

	return &App{
		client:      NewClient(apiAddr),
		staffID:     strings.TrimSpace(staffID),
		input:       ti,
		mode:        modeBoard,
		suggestions: NewSuggestions(),
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.fetchTasks(),
		a.checkDaemon(),
		a.tickCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit

		case "esc":
			if a.suggestions.IsVisible() {
				a.input.SetValue("")
				a.suggestions.Update("")
				return a, nil
			}
			if a.mode == modeDetail && a.prevMode != "" && a.prevMode != modeBoard {
				a.setMode(a.prevMode)
				return a, a.refresh()
			}
			if a.mode != modeBoard {
				a.setMode(modeBoard)
				return a, a.refresh()
			}

		case "up":
			switch {
			case a.suggestions.IsVisible():
				a.suggestions.Prev()
			case a.mode == modeDetail:
				a.detail.scrollBy(-1)
			case a.selectedIdx > 0:
				a.selectedIdx--
			}
			return a, nil

		case "down":
			switch {
			case a.suggestions.IsVisible():
				a.suggestions.Next()
			case a.mode == modeDetail:
				a.detail.scrollBy(1)
			case a.selectedIdx < a.rowCount()-1:
				a.selectedIdx++
			}
			return a, nil

		case "tab":
			if a.suggestions.IsVisible() {
				a.input.SetValue(a.suggestions.Complete(a.input.Value()))
				a.input.CursorEnd()
				a.suggestions.Update("")
				return a, nil
			}
			if a.mode == modeBoard {
				a.filterIdx = (a.filterIdx + 1) % len(typeFilters)
				return a, a.fetchTasks()
			}
			return a, nil

		case "enter":
			if a.suggestions.IsVisible() {
				a.input.SetValue(a.suggestions.Complete(a.input.Value()))
				a.input.CursorEnd()
				a.suggestions.Update("")
				return a, nil
			}
			cmd := strings.TrimSpace(a.input.Value())
			if cmd != "" {
				a.input.SetValue("")
				a.suggestions.Update("")
				return a, a.executeCommand(cmd)
			}
			if id := a.selectedTaskID(); id != "" && a.mode != modeDetail {
				a.prevMode = a.mode
				a.setMode(modeDetail)
				return a, a.fetchTaskDetail(id)
			}
			return a, nil

		case "ctrl+r":
			return a, a.refresh()

		case "ctrl+n":
			return a, a.executeCommand("advance")
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 4

	case tasksLoadedMsg:
		a.loading = false
		a.tasks = msg.tasks
		a.clampSelection()
		a.updateReferences()

	case inboxLoadedMsg:
		a.inbox = msg.tasks
		a.clampSelection()

	case attentionLoadedMsg:
		a.report = msg.report
		a.clampSelection()

	case taskDetailLoadedMsg:
		a.detail.set(msg)

	case daemonStatusMsg:
		a.daemonOnline = msg.online

	case tickMsg:
		cmds = append(cmds, a.refresh(), a.checkDaemon(), a.tickCmd())

	case commandResultMsg:
		a.message = msg.message
		return a, a.refresh()

	case errMsg:
		a.loading = false
		a.message = "Error: " + msg.err.Error()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	a.suggestions.Update(a.input.Value())

	return a, tea.Batch(cmds...)
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	daemonStatus := onlineStyle.Render("● DAEMON")
	if !a.daemonOnline {
		daemonStatus = offlineStyle.Render("○ DAEMON")
	}
	who := lipgloss.NewStyle().Foreground(mutedColor).Render("○ anonymous")
	if a.staffID != "" {
		who = lipgloss.NewStyle().Foreground(successColor).Render("● " + a.staffID)
	}

	header := titleStyle.Render("🏨 RESORT OPS")
	header += "  " + daemonStatus
	header += "  " + lipgloss.NewStyle().Foreground(cyanColor).Render(fmt.Sprintf("[%d tasks]", len(a.tasks)))
	header += "  " + who

	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", a.width) + "\n")

	contentHeight := a.height - 8
	if contentHeight < 5 {
		contentHeight = 5
	}

	switch a.mode {
	case modeBoard:
		filterLabel := fmt.Sprintf(" Type: [%s]", filterName(typeFilters[a.filterIdx]))
		b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(filterLabel) + "\n")
		b.WriteString(a.renderTaskList(a.tasks, contentHeight-1, "No tasks. Create some with: resortops task add"))
	case modeInbox:
		b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(" Help requests for "+a.staffID) + "\n")
		b.WriteString(a.renderTaskList(a.inbox, contentHeight-1, "Nobody needs a hand right now."))
	case modeAttention:
		b.WriteString(a.renderAttention(contentHeight))
	case modeDetail:
		b.WriteString(a.detail.view(contentHeight))
	}

	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString("\n" + msgStyle.Render(a.message))
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(a.input.View()))

	if a.suggestions.IsVisible() {
		b.WriteString("\n")
		b.WriteString(a.suggestions.Render(a.width))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case modeBoard:
		status = fmt.Sprintf(" Tasks: %d | ↑↓:nav | Enter:open | Tab:type | Ctrl+N:advance | Ctrl+R:refresh | Ctrl+C:quit", len(a.tasks))
	case modeInbox:
		status = fmt.Sprintf(" Requests: %d | ↑↓:nav | Enter:open | accept | Esc:back", len(a.inbox))
	case modeAttention:
		n := 0
		if a.report != nil {
			n = len(a.report.Alerts)
		}
		status = fmt.Sprintf(" Alerts: %d | ↑↓:nav | Enter:open | Esc:back", n)
	default:
		status = " ↑↓:scroll | Ctrl+N:advance | check <item> | Esc:back"
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(status))

	return b.String()
}

func (a *App) renderTaskList(items []TaskItem, height int, empty string) string {
	if len(items) == 0 {
		if a.loading {
			return "\n  Loading tasks...\n"
		}
		return "\n  " + helpStyle.Render(empty) + "\n"
	}

	lines := make([]string, 0, len(items))
	for i, t := range items {
		when := "--:--"
		if !t.Scheduled.IsZero() {
			when = t.Scheduled.Local().Format("15:04")
		}
		assignee := t.Assignee
		if assignee == "" {
			assignee = "-"
		}
		flag := " "
		if len(t.Attention) > 0 {
			flag = "!"
		}
		row := fmt.Sprintf("%s %s %-12s %-24s %-8s %s", flag, when, t.Type, truncate(t.Title, 24), assignee, t.Stage)

		if i == a.selectedIdx {
			lines = append(lines, selectedStyle.Render("▶ "+row))
			continue
		}
		row = fmt.Sprintf("%s %s %-12s %-24s %-8s %s", flagStyle(flag), when, t.Type, truncate(t.Title, 24), assignee, formatStage(t.Type, t.Stage, t.Done))
		lines = append(lines, taskItemStyle.Render("  "+row))
	}

	return strings.Join(window(lines, a.selectedIdx, height), "\n")
}

func (a *App) renderAttention(height int) string {
	if a.report == nil {
		return "\n  Loading...\n"
	}
	if len(a.report.Alerts) == 0 {
		return fmt.Sprintf("\n  %s\n", statusCompleted.Render(fmt.Sprintf("All clear. %d open tasks, none need attention.", a.report.Open)))
	}

	lines := []string{fmt.Sprintf(" %d of %d open tasks need attention", len(a.report.Alerts), a.report.Open)}
	for i, al := range a.report.Alerts {
		row := fmt.Sprintf("%-7s %-12s %-24s %s", al.Priority, al.Type, truncate(al.Title, 24), strings.Join(al.Reasons, ", "))
		if i == a.selectedIdx {
			lines = append(lines, selectedStyle.Render("▶ "+row))
		} else {
			lines = append(lines, taskItemStyle.Render("  "+statusFailed.Render(row)))
		}
	}
	return strings.Join(window(lines, a.selectedIdx+1, height), "\n")
}

// window keeps the selected line visible within height lines.
func window(lines []string, selected, height int) []string {
	if len(lines) <= height {
		return lines
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
		start = max(0, end-height)
	}
	return lines[start:end]
}

func flagStyle(flag string) string {
	if flag == "!" {
		return statusFailed.Render(flag)
	}
	return flag
}

func filterName(t models.TaskType) string {
	if t == "" {
		return "ALL"
	}
	return strings.ToUpper(string(t))
}

func formatStage(t models.TaskType, stage string, done bool) string {
	switch {
	case done:
		return statusCompleted.Render("● " + stage)
	case stage == string(models.HelpCancelled):
		return statusFailed.Render("✗ " + stage)
	case workflow.Progress(t, workflow.State(stage)) == 0:
		return statusPending.Render("○ " + stage)
	default:
		return statusRunning.Render("◐ " + stage)
	}
}

func formatPriority(p models.Priority) string {
	switch p {
	case models.PriorityUrgent:
		return statusFailed.Render(string(p))
	case models.PriorityHigh:
		return statusPending.Render(string(p))
	default:
		return string(p)
	}
}

func (a *App) setMode(mode string) {
	a.mode = mode
	a.selectedIdx = 0
	if mode != modeDetail {
		a.detail.reset()
	}
}

func (a *App) rowCount() int {
	switch a.mode {
	case modeBoard:
		return len(a.tasks)
	case modeInbox:
		return len(a.inbox)
	case modeAttention:
		if a.report != nil {
			return len(a.report.Alerts)
		}
	}
	return 0
}

func (a *App) clampSelection() {
	if a.selectedIdx >= a.rowCount() {
		a.selectedIdx = max(0, a.rowCount()-1)
	}
}

// selectedTaskID returns the task the cursor (or the detail screen) is on.
func (a *App) selectedTaskID() string {
	switch a.mode {
	case modeDetail:
		if a.detail.task != nil {
			return a.detail.task.ID
		}
	case modeBoard:
		if a.selectedIdx < len(a.tasks) {
			return a.tasks[a.selectedIdx].ID
		}
	case modeInbox:
		if a.selectedIdx < len(a.inbox) {
			return a.inbox[a.selectedIdx].ID
		}
	case modeAttention:
		if a.report != nil && a.selectedIdx < len(a.report.Alerts) {
			return a.report.Alerts[a.selectedIdx].TaskID
		}
	}
	return ""
}

// updateReferences offers every staff id and task id seen on the board after "@".
func (a *App) updateReferences() {
	seen := make(map[string]bool)
	var staff, ids []string
	add := func(id string) {
		if id != "" && id != models.AllStaff && !seen[id] {
			seen[id] = true
			staff = append(staff, id)
		}
	}
	add(a.staffID)
	for _, t := range a.tasks {
		add(t.Assignee)
		ids = append(ids, t.ID)
	}
	sort.Strings(staff)
	a.suggestions.SetReferences(staff, ids)
}

func (a *App) refresh() tea.Cmd {
	switch a.mode {
	case modeDetail:
		if a.detail.task != nil {
			return a.fetchTaskDetail(a.detail.task.ID)
		}
		return nil
	case modeInbox:
		return a.fetchInbox()
	case modeAttention:
		return a.fetchAttention()
	default:
		return a.fetchTasks()
	}
}

func (a *App) fetchTasks() tea.Cmd {
	a.loading = true
	filter := typeFilters[a.filterIdx]
	return func() tea.Msg {
		ts, err := a.client.ListTasks(filter)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{newTaskItems(ts)}
	}
}

func (a *App) fetchInbox() tea.Cmd {
	staffID := a.staffID
	return func() tea.Msg {
		ts, err := a.client.HelpInbox(staffID)
		if err != nil {
			return errMsg{err}
		}
		return inboxLoadedMsg{newTaskItems(ts)}
	}
}

func (a *App) fetchAttention() tea.Cmd {
	return func() tea.Msg {
		report, err := a.client.Attention()
		if err != nil {
			return errMsg{err}
		}
		return attentionLoadedMsg{report}
	}
}

func (a *App) fetchTaskDetail(taskID string) tea.Cmd {
	return func() tea.Msg {
		task, err := a.client.GetTask(taskID)
		if err != nil {
			return errMsg{err}
		}
		entries, _ := a.client.TaskLog(taskID)
		candidates, _ := a.client.Candidates(taskID)
		return taskDetailLoadedMsg{task: task, log: entries, candidates: candidates}
	}
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		return daemonStatusMsg{online: a.client.CheckHealth() == nil}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// executeCommand runs one line typed into the command box. View commands
// change the screen directly; everything else calls the API.
func (a *App) executeCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]
	for i := range args {
		args[i] = strings.TrimPrefix(args[i], "@")
	}

	switch cmd {
	case "q", "quit", "exit":
		return tea.Quit

	case "board":
		a.setMode(modeBoard)
		return a.refresh()

	case "attention":
		a.setMode(modeAttention)
		return a.refresh()

	case "inbox":
		if a.staffID == "" {
			a.message = "Error: set who you are first: as <staff-id>"
			return nil
		}
		a.setMode(modeInbox)
		return a.refresh()

	case "as":
		if len(args) != 1 {
			a.message = "Usage: as <staff-id>"
			return nil
		}
		a.staffID = args[0]
		a.message = "✓ Acting as " + a.staffID
		a.updateReferences()
		return nil

	case "filter":
		idx := 0
		if len(args) > 0 && args[0] != "all" {
			idx = -1
			for i, t := range typeFilters {
				if string(t) == args[0] {
					idx = i
				}
			}
			if idx < 0 {
				a.message = fmt.Sprintf("Error: unknown task type %q", args[0])
				return nil
			}
		}
		a.filterIdx = idx
		a.setMode(modeBoard)
		return a.fetchTasks()
	}

	taskID := a.selectedTaskID()
	staffID := a.staffID
	client := a.client

	return func() tea.Msg {
		needTask := func() (string, bool) { return taskID, taskID != "" }
		done := func(t *models.Task, err error, verb string) tea.Msg {
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{fmt.Sprintf("✓ %s %s: %s", verb, t.Title, workflow.Current(t))}
		}

		switch cmd {
		case "advance", "next":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			to := ""
			if len(args) > 0 {
				to = args[0]
			}
			t, err := client.Advance(id, to)
			return done(t, err, "Advanced")

		case "check":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			if len(args) < 1 {
				return commandResultMsg{"Usage: check <item>"}
			}
			t, err := client.ToggleChecklist(id, strings.Join(args, " "))
			return done(t, err, "Toggled item on")

		case "recheck":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			t, err := client.ToggleNeedsCheck(id)
			return done(t, err, "Re-check toggled on")

		case "assign":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			if len(args) != 1 {
				return commandResultMsg{"Usage: assign <staff-id>"}
			}
			t, err := client.Assign(id, args[0])
			return done(t, err, "Assigned "+args[0]+" to")

		case "shuttle":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			if len(args) < 1 || len(args) > 2 {
				return commandResultMsg{"Usage: shuttle <vehicle-id|-> [driver-id]"}
			}
			vehicle, driver := args[0], ""
			if vehicle == "-" {
				vehicle = ""
			}
			if len(args) == 2 {
				driver = args[1]
			}
			t, err := client.AssignShuttle(id, vehicle, driver)
			return done(t, err, "Updated shuttle")

		case "accept":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			who := staffID
			if len(args) > 0 {
				who = args[0]
			}
			if who == "" {
				return commandResultMsg{"Usage: accept <staff-id> (or set: as <staff-id>)"}
			}
			t, err := client.AcceptHelp(id, who)
			return done(t, err, "Accepted")

		case "done":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			t, err := client.CompleteHelp(id)
			return done(t, err, "Completed")

		case "cancel":
			id, ok := needTask()
			if !ok {
				return commandResultMsg{"No task selected"}
			}
			t, err := client.CancelHelp(id)
			return done(t, err, "Cancelled")

		case "help":
			if staffID == "" {
				return commandResultMsg{"Error: set who you are first: as <staff-id>"}
			}
			if len(args) < 1 {
				return commandResultMsg{"Usage: help <what you need>"}
			}
			t, err := client.CreateTask(models.Draft{
				Title:         strings.Join(args, " "),
				ScheduledTime: time.Now().UTC(),
				Priority:      models.PriorityHigh,
				Payload: &models.HelpRequestPayload{
					RequesterID:    staffID,
					TargetStaffIDs: []string{models.AllStaff},
				},
			})
			return done(t, err, "Asked for help:")

		case "note":
			if len(args) < 1 {
				return commandResultMsg{"Usage: note <content>"}
			}
			if _, err := client.AddLog(taskID, staffID, strings.Join(args, " ")); err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			return commandResultMsg{"✓ Note added"}

		case "search":
			if len(args) < 1 {
				return commandResultMsg{"Usage: search <term>"}
			}
			entries, err := client.QueryLog(strings.Join(args, " "))
			if err != nil {
				return commandResultMsg{"Error: " + err.Error()}
			}
			if len(entries) == 0 {
				return commandResultMsg{"No notes found"}
			}
			return commandResultMsg{fmt.Sprintf("Found %d notes. Latest: %s", len(entries), truncate(entries[0].Content, 60))}

		default:
			return commandResultMsg{fmt.Sprintf("Unknown: %s (type / for commands)", cmd)}
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
