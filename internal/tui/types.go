package tui

import (
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/staffing"
	"github.com/fentz26/resortops/internal/tasks"
	"github.com/fentz26/resortops/internal/workflow"
)

// TaskItem is a summary of a task for the board view
type TaskItem struct {
	ID        string
	Title     string
	Type      models.TaskType
	Stage     string
	Done      bool
	Assignee  string
	Priority  models.Priority
	RoomID    string
	Scheduled time.Time
	Attention []string
}

func newTaskItem(t *models.Task) TaskItem {
	return TaskItem{
		ID:        t.ID,
		Title:     t.Title,
		Type:      t.Type(),
		Stage:     string(workflow.Current(t)),
		Done:      t.Status == models.TaskStatusCompleted,
		Assignee:  t.AssignedStaffID,
		Priority:  t.Priority,
		RoomID:    t.RoomID,
		Scheduled: t.ScheduledTime,
		Attention: tasks.AttentionReasons(t),
	}
}

func newTaskItems(ts []models.Task) []TaskItem {
	items := make([]TaskItem, len(ts))
	for i := range ts {
		items[i] = newTaskItem(&ts[i])
	}
	return items
}

type commandResultMsg struct {
	message string
}

type errMsg struct {
	err error
}

type tasksLoadedMsg struct {
	tasks []TaskItem
}

type taskDetailLoadedMsg struct {
	task       *models.Task
	log        []models.LogEntry
	candidates *staffing.MatchResult
}

type attentionLoadedMsg struct {
	report *monitor.Report
}

type inboxLoadedMsg struct {
	tasks []TaskItem
}

type daemonStatusMsg struct {
	online bool
}

type tickMsg time.Time
