// Package store provides SQLite-backed persistence for resortops.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides access to the resortops SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		room_id TEXT,
		scheduled_time DATETIME,
		estimated_duration INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		assigned_staff_id TEXT,
		priority TEXT NOT NULL DEFAULT 'normal',
		is_anniversary_related INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		notes TEXT,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pdr (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		task_id TEXT,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS handover_log (
		id TEXT PRIMARY KEY,
		task_id TEXT,
		author TEXT,
		content TEXT NOT NULL,
		tags TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_type ON tasks(type);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_pdr_task_id ON pdr(task_id);
	CREATE INDEX IF NOT EXISTS idx_handover_log_task_id ON handover_log(task_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Task Operations ---

const taskColumns = `id, type, title, description, room_id, scheduled_time, estimated_duration,
	status, assigned_staff_id, priority, is_anniversary_related, completed_at,
	created_at, updated_at, notes, payload`

// SaveTask writes the full state of a task, inserting or replacing its row.
func (s *Store) SaveTask(task *models.Task) error {
	payload, err := models.EncodePayload(task.Payload)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", task.ID, err)
	}

	var scheduled, completed interface{}
	if !task.ScheduledTime.IsZero() {
		scheduled = task.ScheduledTime.UTC()
	}
	if task.CompletedAt != nil {
		completed = task.CompletedAt.UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			room_id = excluded.room_id,
			scheduled_time = excluded.scheduled_time,
			estimated_duration = excluded.estimated_duration,
			status = excluded.status,
			assigned_staff_id = excluded.assigned_staff_id,
			priority = excluded.priority,
			is_anniversary_related = excluded.is_anniversary_related,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at,
			notes = excluded.notes,
			payload = excluded.payload`,
		task.ID, string(task.Type()), task.Title, task.Description, task.RoomID, scheduled,
		task.EstimatedDuration, string(task.Status), task.AssignedStaffID, string(task.Priority),
		task.IsAnniversaryRelated, completed, task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
		task.Notes, string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. It returns nil, nil if there is no such task.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks, optionally filtered by type.
func (s *Store) ListTasks(taskType string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []interface{}

	if taskType != "" {
		query += ` WHERE type = ?`
		args = append(args, taskType)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(r rowScanner) (*models.Task, error) {
	var (
		task                                models.Task
		taskType, status, priority, payload string
		description, roomID, staffID, notes sql.NullString
		scheduled, completed                sql.NullTime
	)

	err := r.Scan(&task.ID, &taskType, &task.Title, &description, &roomID, &scheduled,
		&task.EstimatedDuration, &status, &staffID, &priority, &task.IsAnniversaryRelated,
		&completed, &task.CreatedAt, &task.UpdatedAt, &notes, &payload)
	if err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	task.Priority = models.Priority(priority)
	task.Description = description.String
	task.RoomID = roomID.String
	task.AssignedStaffID = staffID.String
	task.Notes = notes.String
	if scheduled.Valid {
		task.ScheduledTime = scheduled.Time
	}
	if completed.Valid {
		at := completed.Time
		task.CompletedAt = &at
	}

	p, err := models.DecodePayload(models.TaskType(taskType), []byte(payload))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	task.Payload = p
	return &task, nil
}

// --- PDR Operations ---

// WritePDR writes a Process Decision Record.
func (s *Store) WritePDR(action, inputsHash, outcome, taskID, details string) (*models.PDREntry, error) {
	pdr := &models.PDREntry{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		Outcome:    outcome,
		TaskID:     taskID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO pdr (id, action, inputs_hash, outcome, task_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pdr.ID, pdr.Action, pdr.InputsHash, pdr.Outcome, pdr.TaskID, pdr.Details, pdr.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pdr: %w", err)
	}
	return pdr, nil
}

// ListPDR returns the decision records for a task, newest first. An empty
// taskID lists the most recent records across all tasks.
func (s *Store) ListPDR(taskID string, limit int) ([]models.PDREntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, action, inputs_hash, outcome, task_id, details, timestamp FROM pdr`
	var args []interface{}
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pdr: %w", err)
	}
	defer rows.Close()

	var entries []models.PDREntry
	for rows.Next() {
		var e models.PDREntry
		var tid, details sql.NullString
		if err := rows.Scan(&e.ID, &e.Action, &e.InputsHash, &e.Outcome, &tid, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan pdr: %w", err)
		}
		e.TaskID = tid.String
		e.Details = details.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- Handover Log Operations ---

// AddLogEntry inserts a handover note. taskID may be empty for shift-wide notes.
func (s *Store) AddLogEntry(taskID, author, content, tags string) (*models.LogEntry, error) {
	entry := &models.LogEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Author:    author,
		Content:   content,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO handover_log (id, task_id, author, content, tags, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, nullIfEmpty(entry.TaskID), entry.Author, entry.Content, entry.Tags, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert log entry: %w", err)
	}
	return entry, nil
}

// QueryLog searches handover notes by content or tag.
func (s *Store) QueryLog(query string) ([]models.LogEntry, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	return s.queryLog(
		`SELECT id, task_id, author, content, tags, created_at FROM handover_log
		 WHERE content LIKE ? OR tags LIKE ? ORDER BY created_at DESC LIMIT 50`,
		like, like,
	)
}

// GetLogForTask returns the handover notes attached to a task.
func (s *Store) GetLogForTask(taskID string) ([]models.LogEntry, error) {
	return s.queryLog(
		`SELECT id, task_id, author, content, tags, created_at FROM handover_log
		 WHERE task_id = ? ORDER BY created_at DESC`,
		taskID,
	)
}

func (s *Store) queryLog(query string, args ...interface{}) ([]models.LogEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var taskID, author, tags sql.NullString
		if err := rows.Scan(&e.ID, &taskID, &author, &e.Content, &tags, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.TaskID = taskID.String
		e.Author = author.String
		e.Tags = tags.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
