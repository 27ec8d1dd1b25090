// Package controlplane provides the HTTP API and service layer for resortops.
package controlplane

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fentz26/resortops/internal/audit"
	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/staffing"
	"github.com/fentz26/resortops/internal/store"
	"github.com/fentz26/resortops/internal/tasks"
	"github.com/fentz26/resortops/internal/workflow"
)

// Service owns the task board and keeps the database in step with it.
type Service struct {
	board   *tasks.Board
	store   *store.Store
	pdr     *audit.PDRWriter
	matcher *staffing.Matcher

	// mu serializes mutate-then-persist so rows are written in board order.
	mu        sync.Mutex
	lookahead time.Duration
}

// NewService creates a new control plane service. A nil matcher falls back to
// the default staff directory.
func NewService(b *tasks.Board, s *store.Store, pdr *audit.PDRWriter, m *staffing.Matcher) *Service {
	if m == nil {
		cfg := staffing.DefaultConfig()
		dir, err := staffing.NewDirectoryFromConfig(cfg)
		if err != nil {
			log.Printf("Warning: default staff directory invalid: %v", err)
		}
		m = staffing.NewMatcher(cfg, dir)
	}
	return &Service{
		board:     b,
		store:     s,
		pdr:       pdr,
		matcher:   m,
		lookahead: monitor.DefaultConfig().Lookahead,
	}
}

// SetLookahead sets the window used to flag unstaffed tasks in Attention.
func (s *Service) SetLookahead(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookahead = d
}

// Board returns the underlying task board.
func (s *Service) Board() *tasks.Board {
	return s.board
}

// Load restores the board from the database.
func (s *Service) Load() (int, error) {
	stored, err := s.store.ListTasks("")
	if err != nil {
		return 0, fmt.Errorf("load tasks: %w", err)
	}
	if err := s.board.Restore(stored); err != nil {
		return 0, fmt.Errorf("restore tasks: %w", err)
	}
	return len(stored), nil
}

// apply runs a board mutation, persists the result and records a PDR either way.
func (s *Service) apply(action, taskID string, inputs interface{}, fn func() (*models.Task, error)) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := fn()
	if err != nil {
		s.record(action, inputs, audit.OutcomeRejected, taskID, err.Error())
		return nil, err
	}

	if err := s.store.SaveTask(task); err != nil {
		log.Printf("Failed to persist task %s after %s: %v", task.ID, action, err)
		s.record(action, inputs, audit.OutcomeFailed, task.ID, err.Error())
		return nil, fmt.Errorf("persist task: %w", err)
	}

	s.record(action, inputs, audit.OutcomeSuccess, task.ID, describe(task))
	return task, nil
}

func (s *Service) record(action string, inputs interface{}, outcome, taskID, details string) {
	if s.pdr == nil {
		return
	}
	if _, err := s.pdr.Record(action, inputs, outcome, taskID, details); err != nil {
		log.Printf("Failed to record PDR for %s: %v", action, err)
	}
}

func describe(t *models.Task) string {
	return fmt.Sprintf("%s %s/%s", t.Type(), t.Status, workflow.Current(t))
}

// --- Task Operations ---

// CreateTask adds a new task of the draft's type.
func (s *Service) CreateTask(d models.Draft) (*models.Task, error) {
	return s.apply("task.create", "", map[string]interface{}{"type": d.Type(), "title": d.Title}, func() (*models.Task, error) {
		return s.board.Create(d.Type(), d)
	})
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(id string) (*models.Task, error) {
	return s.board.Get(id)
}

// ListTasks returns the tasks matching f.
func (s *Service) ListTasks(f tasks.Filter) []models.Task {
	return s.board.List(f)
}

// SetStatus changes the coarse status of a task.
func (s *Service) SetStatus(id string, status models.TaskStatus) (*models.Task, error) {
	return s.apply("task.status", id, map[string]string{"task_id": id, "status": string(status)}, func() (*models.Task, error) {
		return s.board.SetStatus(id, status)
	})
}

// Advance moves a task to the given domain status. An empty target moves it
// one step forward.
func (s *Service) Advance(id, to string) (*models.Task, error) {
	return s.apply("task.advance", id, map[string]string{"task_id": id, "to": to}, func() (*models.Task, error) {
		target := strings.TrimSpace(to)
		if target == "" {
			cur, err := s.board.Get(id)
			if err != nil {
				return nil, err
			}
			next, ok := workflow.Next(cur.Type(), workflow.Current(cur))
			if !ok {
				return nil, fmt.Errorf("%w: %s task is already %s", tasks.ErrInvalidTransition, cur.Type(), workflow.Current(cur))
			}
			target = string(next)
		}
		return s.board.Advance(id, target)
	})
}

// ToggleChecklistItem flips a checklist item.
func (s *Service) ToggleChecklistItem(id, item string) (*models.Task, error) {
	return s.apply("task.checklist", id, map[string]string{"task_id": id, "item": item}, func() (*models.Task, error) {
		return s.board.ToggleChecklistItem(id, item)
	})
}

// ToggleNeedsCheck flips the meal re-check flag.
func (s *Service) ToggleNeedsCheck(id string) (*models.Task, error) {
	return s.apply("task.needs_check", id, map[string]string{"task_id": id}, func() (*models.Task, error) {
		return s.board.ToggleNeedsCheck(id)
	})
}

// Reassign sets the assigned staff member.
func (s *Service) Reassign(id, staffID string) (*models.Task, error) {
	return s.apply("task.assign", id, map[string]string{"task_id": id, "staff_id": staffID}, func() (*models.Task, error) {
		return s.board.Reassign(id, staffID)
	})
}

// ReassignShuttle sets a shuttle's vehicle and driver.
func (s *Service) ReassignShuttle(id, vehicleID, driverID string) (*models.Task, error) {
	inputs := map[string]string{"task_id": id, "vehicle_id": vehicleID, "driver_id": driverID}
	return s.apply("task.shuttle_assign", id, inputs, func() (*models.Task, error) {
		return s.board.ReassignShuttle(id, vehicleID, driverID)
	})
}

// AcceptHelp accepts a help request on behalf of a staff member.
func (s *Service) AcceptHelp(id, staffID string) (*models.Task, error) {
	return s.apply("help.accept", id, map[string]string{"task_id": id, "staff_id": staffID}, func() (*models.Task, error) {
		return s.board.AcceptHelp(id, staffID)
	})
}

// CompleteHelp closes an accepted help request.
func (s *Service) CompleteHelp(id string) (*models.Task, error) {
	return s.apply("help.complete", id, map[string]string{"task_id": id}, func() (*models.Task, error) {
		return s.board.CompleteHelp(id)
	})
}

// CancelHelp withdraws a help request.
func (s *Service) CancelHelp(id string) (*models.Task, error) {
	return s.apply("help.cancel", id, map[string]string{"task_id": id}, func() (*models.Task, error) {
		return s.board.CancelHelp(id)
	})
}

// SetCompletionReport records a celebration's completion report.
func (s *Service) SetCompletionReport(id, report string) (*models.Task, error) {
	return s.apply("task.report", id, map[string]string{"task_id": id, "report": report}, func() (*models.Task, error) {
		return s.board.SetCompletionReport(id, report)
	})
}

// SetNotes replaces a task's notes.
func (s *Service) SetNotes(id, notes string) (*models.Task, error) {
	return s.apply("task.notes", id, map[string]string{"task_id": id, "notes_len": fmt.Sprintf("%d", len(notes))}, func() (*models.Task, error) {
		return s.board.SetNotes(id, notes)
	})
}

// SetPriority changes a task's priority.
func (s *Service) SetPriority(id string, p models.Priority) (*models.Task, error) {
	return s.apply("task.priority", id, map[string]string{"task_id": id, "priority": string(p)}, func() (*models.Task, error) {
		return s.board.SetPriority(id, p)
	})
}

// --- Assignment Support ---

// Candidates suggests staff (and vehicles for shuttles) for a task.
func (s *Service) Candidates(ctx context.Context, id string) (*staffing.MatchResult, error) {
	task, err := s.board.Get(id)
	if err != nil {
		return nil, err
	}
	return s.matcher.Match(ctx, task, s.workload())
}

// workload counts open tasks per assigned staff member.
func (s *Service) workload() map[string]int {
	load := make(map[string]int)
	for _, t := range s.board.List(tasks.Filter{ActiveOnly: true}) {
		if t.AssignedStaffID != "" {
			load[t.AssignedStaffID]++
		}
	}
	return load
}

// HelpInbox returns pending help requests addressed to a staff member.
func (s *Service) HelpInbox(staffID string) ([]models.Task, error) {
	if strings.TrimSpace(staffID) == "" {
		return nil, fmt.Errorf("%w: staff id required", ErrInvalidRequest)
	}
	return s.board.HelpInbox(strings.TrimSpace(staffID)), nil
}

// Attention evaluates every open task against the attention rules now.
func (s *Service) Attention() monitor.Report {
	s.mu.Lock()
	lookahead := s.lookahead
	s.mu.Unlock()
	return monitor.Evaluate(s.board.Snapshot(), time.Now().UTC(), lookahead)
}

// Audit returns the decision records for a task.
func (s *Service) Audit(id string, limit int) ([]models.PDREntry, error) {
	if _, err := s.board.Get(id); err != nil {
		return nil, err
	}
	return s.store.ListPDR(id, limit)
}

// --- Handover Log Operations ---

// AddLogEntry adds a handover note. A non-empty taskID must name a known task.
func (s *Service) AddLogEntry(taskID, author, content, tags string) (*models.LogEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: log content required", ErrInvalidRequest)
	}
	if taskID != "" {
		if _, err := s.board.Get(taskID); err != nil {
			return nil, err
		}
	}

	entry, err := s.store.AddLogEntry(taskID, author, content, tags)
	if err != nil {
		return nil, err
	}
	s.record("log.add", map[string]string{"task_id": taskID, "author": author, "content_len": fmt.Sprintf("%d", len(content))}, audit.OutcomeSuccess, taskID, "")
	return entry, nil
}

// QueryLog searches handover notes.
func (s *Service) QueryLog(query string) ([]models.LogEntry, error) {
	return s.store.QueryLog(query)
}

// TaskLog returns the handover notes for a task.
func (s *Service) TaskLog(taskID string) ([]models.LogEntry, error) {
	if _, err := s.board.Get(taskID); err != nil {
		return nil, err
	}
	return s.store.GetLogForTask(taskID)
}
