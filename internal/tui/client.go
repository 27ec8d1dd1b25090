package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/staffing"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the resortops API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// ListTasks fetches the board, optionally restricted to one task type.
func (c *Client) ListTasks(taskType models.TaskType) ([]models.Task, error) {
	path := "/tasks"
	if taskType != "" {
		path += "?type=" + url.QueryEscape(string(taskType))
	}
	var out []models.Task
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask fetches a single task
func (c *Client) GetTask(id string) (*models.Task, error) {
	var t models.Task
	if err := c.get("/tasks/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TaskLog fetches the handover notes attached to a task.
func (c *Client) TaskLog(id string) ([]models.LogEntry, error) {
	var out []models.LogEntry
	if err := c.get("/tasks/"+url.PathEscape(id)+"/log", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Candidates fetches staffing suggestions for a task.
func (c *Client) Candidates(id string) (*staffing.MatchResult, error) {
	var out staffing.MatchResult
	if err := c.get("/tasks/"+url.PathEscape(id)+"/candidates", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task from a draft.
func (c *Client) CreateTask(d models.Draft) (*models.Task, error) {
	return c.postTask("/tasks", d)
}

// Advance moves a task to the given domain status, or one step forward when to is empty.
func (c *Client) Advance(id, to string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "advance"), map[string]string{"to": to})
}

// ToggleChecklist flips one checklist item.
func (c *Client) ToggleChecklist(id, item string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "checklist"), map[string]string{"item": item})
}

// ToggleNeedsCheck flips a meal's re-check flag.
func (c *Client) ToggleNeedsCheck(id string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "needs-check"), struct{}{})
}

// Assign sets the staff member responsible for a task.
func (c *Client) Assign(id, staffID string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "assign"), map[string]string{"staff_id": staffID})
}

// AssignShuttle sets a shuttle's vehicle and driver.
func (c *Client) AssignShuttle(id, vehicleID, driverID string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "shuttle-assign"), map[string]string{
		"vehicle_id": vehicleID,
		"driver_id":  driverID,
	})
}

// AcceptHelp accepts a help request as staffID.
func (c *Client) AcceptHelp(id, staffID string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "accept"), map[string]string{"staff_id": staffID})
}

// CompleteHelp closes an accepted help request.
func (c *Client) CompleteHelp(id string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "complete"), struct{}{})
}

// CancelHelp withdraws a help request.
func (c *Client) CancelHelp(id string) (*models.Task, error) {
	return c.postTask(c.taskPath(id, "cancel"), struct{}{})
}

// HelpInbox fetches the pending help requests addressed to staffID.
func (c *Client) HelpInbox(staffID string) ([]models.Task, error) {
	var out []models.Task
	if err := c.get("/help?staff="+url.QueryEscape(staffID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Attention fetches the tasks that currently need a supervisor.
func (c *Client) Attention() (*monitor.Report, error) {
	var out monitor.Report
	if err := c.get("/attention", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddLog writes a handover note, optionally tied to a task.
func (c *Client) AddLog(taskID, author, content string) (*models.LogEntry, error) {
	body, err := c.post("/log", map[string]string{
		"task_id": taskID,
		"author":  author,
		"content": content,
	})
	if err != nil {
		return nil, err
	}
	var entry models.LogEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// QueryLog searches handover notes.
func (c *Client) QueryLog(query string) ([]models.LogEntry, error) {
	var out []models.LogEntry
	if err := c.get("/log?q="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckHealth checks if the daemon is healthy
func (c *Client) CheckHealth() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		OK bool   `json:"ok"`
		DB string `json:"db"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("daemon unhealthy: %s", result.DB)
	}
	return nil
}

func (c *Client) taskPath(id, action string) string {
	return "/tasks/" + url.PathEscape(id) + "/" + action
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", bytes.TrimSpace(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postTask(path string, data interface{}) (*models.Task, error) {
	body, err := c.post(path, data)
	if err != nil {
		return nil, err
	}
	var t models.Task
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) post(path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", bytes.TrimSpace(body))
	}
	return body, nil
}
