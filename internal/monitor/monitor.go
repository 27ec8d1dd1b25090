// Package monitor periodically sweeps the task board for tasks that need a
// supervisor's attention.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/tasks"
)

// ReasonUnstaffedSoon flags an unassigned task that is about to start.
const ReasonUnstaffedSoon = "unstaffed_soon"

// Config defines the monitor configuration.
type Config struct {
	Enabled bool `yaml:"enabled"`
	// Interval between sweeps.
	Interval time.Duration `yaml:"interval"`
	// Lookahead flags unassigned tasks scheduled to start within this window.
	Lookahead time.Duration `yaml:"lookahead"`
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Interval:  time.Minute,
		Lookahead: 30 * time.Minute,
	}
}

// Source provides task snapshots. *tasks.Board satisfies it.
type Source interface {
	Snapshot() []models.Task
}

// Recorder writes audit records. *audit.PDRWriter satisfies it.
type Recorder interface {
	Record(action string, inputs interface{}, outcome, taskID, details string) (*models.PDREntry, error)
}

// Alert is one task that needs attention.
type Alert struct {
	TaskID          string          `json:"task_id"`
	Title           string          `json:"title"`
	Type            models.TaskType `json:"type"`
	Priority        models.Priority `json:"priority"`
	AssignedStaffID string          `json:"assigned_staff_id,omitempty"`
	ScheduledTime   time.Time       `json:"scheduled_time"`
	Reasons         []string        `json:"reasons"`
}

// Report is the result of one sweep.
type Report struct {
	At     time.Time `json:"at"`
	Open   int       `json:"open"`
	Alerts []Alert   `json:"alerts"`
}

// Monitor runs the attention sweep in the background.
type Monitor struct {
	source   Source
	recorder Recorder
	config   Config
	now      func() time.Time

	mu     sync.Mutex
	last   Report
	raised map[string]string // task id -> reasons last reported
	sweeps int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new monitor. recorder may be nil.
func New(src Source, recorder Recorder, cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		source:   src,
		recorder: recorder,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
		raised:   make(map[string]string),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the sweep loop.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.loop()
	log.Printf("Attention monitor started (every %s)", m.config.Interval)
}

// Stop gracefully stops the monitor.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
	log.Println("Attention monitor stopped")
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.Sweep()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep checks every open task once and returns the resulting report. Alerts
// are logged and audited only when a task's reasons change.
func (m *Monitor) Sweep() Report {
	now := m.now()
	report := Evaluate(m.source.Snapshot(), now, m.config.Lookahead)

	m.mu.Lock()
	current := make(map[string]string, len(report.Alerts))
	var fresh []Alert
	for _, a := range report.Alerts {
		key := strings.Join(a.Reasons, ",")
		current[a.TaskID] = key
		if m.raised[a.TaskID] != key {
			fresh = append(fresh, a)
		}
	}
	m.raised = current
	m.last = report
	m.sweeps++
	m.mu.Unlock()

	for _, a := range fresh {
		log.Printf("Attention: %s task %s (%s): %s", a.Type, a.TaskID, a.Title, strings.Join(a.Reasons, ", "))
		if m.recorder != nil {
			m.recorder.Record("monitor.alert", map[string]interface{}{
				"task_id": a.TaskID,
				"reasons": a.Reasons,
			}, "success", a.TaskID, fmt.Sprintf("Flagged: %s", strings.Join(a.Reasons, ", ")))
		}
	}
	return report
}

// Evaluate builds a report from a snapshot. Alerts are ordered urgent first,
// then by scheduled time.
func Evaluate(snapshot []models.Task, now time.Time, lookahead time.Duration) Report {
	report := Report{At: now, Alerts: []Alert{}}

	for i := range snapshot {
		t := &snapshot[i]
		if t.Status == models.TaskStatusCompleted {
			continue
		}
		report.Open++

		reasons := tasks.AttentionReasons(t)
		if tasks.IsOverdue(t, now) {
			reasons = append(reasons, tasks.ReasonOverdue)
		}
		if startsSoonUnstaffed(t, now, lookahead) {
			reasons = append(reasons, ReasonUnstaffedSoon)
		}
		if len(reasons) == 0 {
			continue
		}

		report.Alerts = append(report.Alerts, Alert{
			TaskID:          t.ID,
			Title:           t.Title,
			Type:            t.Type(),
			Priority:        t.Priority,
			AssignedStaffID: t.AssignedStaffID,
			ScheduledTime:   t.ScheduledTime,
			Reasons:         reasons,
		})
	}

	sort.SliceStable(report.Alerts, func(i, j int) bool {
		a, b := report.Alerts[i], report.Alerts[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.ScheduledTime.Before(b.ScheduledTime)
	})
	return report
}

// startsSoonUnstaffed reports an unassigned pending task whose start falls
// within the lookahead window.
func startsSoonUnstaffed(t *models.Task, now time.Time, lookahead time.Duration) bool {
	if lookahead <= 0 || t.AssignedStaffID != "" || t.Status != models.TaskStatusPending {
		return false
	}
	if t.Type() == models.TypeHelpRequest || t.ScheduledTime.IsZero() {
		return false
	}
	return !t.ScheduledTime.After(now.Add(lookahead))
}

// LastReport returns the report of the most recent sweep.
func (m *Monitor) LastReport() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.last
	r.Alerts = append([]Alert(nil), m.last.Alerts...)
	return r
}

// GetStats returns current monitor statistics.
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"sweeps":     m.sweeps,
		"open_tasks": m.last.Open,
		"alerts":     len(m.last.Alerts),
		"last_sweep": m.last.At,
		"interval":   m.config.Interval.String(),
	}
}
