package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/fentz26/resortops/internal/staffing"
	"github.com/fentz26/resortops/internal/tasks"
	"github.com/fentz26/resortops/internal/workflow"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:       "add <housekeeping|meal|shuttle|celebration|help_request>",
	Short:     "Add a new task",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"housekeeping", "meal", "shuttle", "celebration", "help_request"},
	RunE:      runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in timeline order",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <pending|in_progress|completed>",
	Short: "Set the coarse status of a housekeeping or celebration task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "status"), map[string]string{"status": args[1]}))
	},
}

var taskAdvanceCmd = &cobra.Command{
	Use:   "advance <task-id> [state]",
	Short: "Move a task to its next domain status, or to the given one",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := ""
		if len(args) == 2 {
			to = args[1]
		}
		return printTaskResult(postTask(taskPath(args[0], "advance"), map[string]string{"to": to}))
	},
}

var taskCheckCmd = &cobra.Command{
	Use:   "check <task-id> <item>",
	Short: "Toggle a checklist item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		item := strings.Join(args[1:], " ")
		return printTaskResult(postTask(taskPath(args[0], "checklist"), map[string]string{"item": item}))
	},
}

var taskNeedsCheckCmd = &cobra.Command{
	Use:   "needs-check <task-id>",
	Short: "Flag or clear a meal for re-check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "needs-check"), struct{}{}))
	},
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <staff-id>",
	Short: "Assign a task to a staff member (use - to unassign)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "assign"), map[string]string{"staff_id": dashEmpty(args[1])}))
	},
}

var taskShuttleCmd = &cobra.Command{
	Use:   "shuttle <task-id>",
	Short: "Set a shuttle's vehicle and driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "shuttle-assign"), map[string]string{
			"vehicle_id": shuttleVehicle,
			"driver_id":  shuttleDriver,
		}))
	},
}

var taskReportCmd = &cobra.Command{
	Use:   "report <task-id> <text>",
	Short: "Record a celebration's completion report",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "report"), map[string]string{"report": strings.Join(args[1:], " ")}))
	},
}

var taskNotesCmd = &cobra.Command{
	Use:   "notes <task-id> <text>",
	Short: "Replace a task's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "notes"), map[string]string{"notes": strings.Join(args[1:], " ")}))
	},
}

var taskPriorityCmd = &cobra.Command{
	Use:   "priority <task-id> <normal|high|urgent>",
	Short: "Change a task's priority",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "priority"), map[string]string{"priority": args[1]}))
	},
}

var taskCandidatesCmd = &cobra.Command{
	Use:   "candidates <task-id>",
	Short: "Suggest staff (and vehicles) for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskCandidates,
}

var taskAuditCmd = &cobra.Command{
	Use:   "audit <task-id>",
	Short: "Show the decision records for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAudit,
}

var (
	addOpts        taskAddOptions
	listOpts       taskListOptions
	shuttleVehicle string
	shuttleDriver  string
	auditLimit     int
)

// taskAddOptions holds the flags of "task add".
type taskAddOptions struct {
	Title         string
	Desc          string
	Room          string
	At            string
	Duration      int
	Priority      string
	Staff         string
	Anniversary   bool
	Notes         string
	Items         []string
	Guests        int
	Diet          []string
	Pickup        string
	Dropoff       string
	Vehicle       string
	Driver        string
	Requester     string
	RequesterName string
	To            []string
}

// taskListOptions holds the flags of "task list".
type taskListOptions struct {
	Type        string
	Status      string
	Staff       string
	Room        string
	Anniversary bool
	Attention   bool
	Active      bool
}

func init() {
	taskCmd.AddCommand(
		taskAddCmd, taskListCmd, taskShowCmd,
		taskStatusCmd, taskAdvanceCmd, taskCheckCmd, taskNeedsCheckCmd,
		taskAssignCmd, taskShuttleCmd, taskReportCmd, taskNotesCmd, taskPriorityCmd,
		taskCandidatesCmd, taskAuditCmd,
	)

	f := taskAddCmd.Flags()
	f.StringVar(&addOpts.Title, "title", "", "Task title (required)")
	f.StringVar(&addOpts.Desc, "desc", "", "Task description")
	f.StringVar(&addOpts.Room, "room", "", "Room id")
	f.StringVar(&addOpts.At, "at", "", "Scheduled time: RFC3339, HH:MM today, or now")
	f.IntVar(&addOpts.Duration, "duration", 0, "Estimated duration in minutes")
	f.StringVar(&addOpts.Priority, "priority", "", "normal, high or urgent")
	f.StringVar(&addOpts.Staff, "staff", "", "Assigned staff id")
	f.BoolVar(&addOpts.Anniversary, "anniversary", false, "Mark as anniversary related")
	f.StringVar(&addOpts.Notes, "notes", "", "Free-form notes")
	f.StringArrayVar(&addOpts.Items, "item", nil, "Checklist item (housekeeping, celebration; repeatable)")
	f.IntVar(&addOpts.Guests, "guests", 1, "Guest count (meal)")
	f.StringArrayVar(&addOpts.Diet, "diet", nil, "Dietary restriction (meal; repeatable)")
	f.StringVar(&addOpts.Pickup, "pickup", "", "Pickup location (shuttle)")
	f.StringVar(&addOpts.Dropoff, "dropoff", "", "Dropoff location (shuttle)")
	f.StringVar(&addOpts.Vehicle, "vehicle", "", "Vehicle id (shuttle)")
	f.StringVar(&addOpts.Driver, "driver", "", "Driver staff id (shuttle)")
	f.StringVar(&addOpts.Requester, "from", "", "Requesting staff id (help_request)")
	f.StringVar(&addOpts.RequesterName, "from-name", "", "Requesting staff name (help_request)")
	f.StringArrayVar(&addOpts.To, "to", nil, "Target staff id, or all (help_request; repeatable)")
	taskAddCmd.MarkFlagRequired("title")

	lf := taskListCmd.Flags()
	lf.StringVar(&listOpts.Type, "type", "", "Filter by task type")
	lf.StringVar(&listOpts.Status, "status", "", "Filter by status (pending, in_progress, completed)")
	lf.StringVar(&listOpts.Staff, "staff", "", "Filter by assigned staff id")
	lf.StringVar(&listOpts.Room, "room", "", "Filter by room id")
	lf.BoolVar(&listOpts.Anniversary, "anniversary", false, "Only anniversary related tasks")
	lf.BoolVar(&listOpts.Attention, "attention", false, "Only tasks that need attention")
	lf.BoolVar(&listOpts.Active, "active", false, "Hide completed tasks")

	taskShuttleCmd.Flags().StringVar(&shuttleVehicle, "vehicle", "", "Vehicle id (empty clears)")
	taskShuttleCmd.Flags().StringVar(&shuttleDriver, "driver", "", "Driver staff id (empty clears)")

	taskAuditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum records to show")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	d, err := buildDraft(models.TaskType(args[0]), addOpts, time.Now())
	if err != nil {
		return err
	}

	t, err := postTask("/tasks", d)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s task: %s\n", t.Type(), t.ID)
	return nil
}

// buildDraft turns "task add" flags into a draft of the given type.
func buildDraft(taskType models.TaskType, o taskAddOptions, now time.Time) (models.Draft, error) {
	at, err := parseWhen(o.At, now)
	if err != nil {
		return models.Draft{}, err
	}

	d := models.Draft{
		Title:                o.Title,
		Description:          o.Desc,
		RoomID:               o.Room,
		ScheduledTime:        at,
		EstimatedDuration:    o.Duration,
		AssignedStaffID:      o.Staff,
		Priority:             models.Priority(o.Priority),
		IsAnniversaryRelated: o.Anniversary,
		Notes:                o.Notes,
	}

	switch taskType {
	case models.TypeHousekeeping:
		d.Payload = &models.HousekeepingPayload{CleaningChecklist: checklist(o.Items)}
	case models.TypeMeal:
		d.Payload = &models.MealPayload{GuestCount: o.Guests, DietaryRestrictions: o.Diet}
	case models.TypeShuttle:
		d.Payload = &models.ShuttlePayload{
			PickupLocation:    o.Pickup,
			DropoffLocation:   o.Dropoff,
			AssignedVehicleID: o.Vehicle,
			AssignedDriverID:  o.Driver,
		}
	case models.TypeCelebration:
		d.Payload = &models.CelebrationPayload{Items: checklist(o.Items)}
	case models.TypeHelpRequest:
		to := o.To
		if len(to) == 0 {
			to = []string{models.AllStaff}
		}
		d.Payload = &models.HelpRequestPayload{
			RequesterID:    o.Requester,
			RequesterName:  o.RequesterName,
			TargetStaffIDs: to,
		}
	default:
		return models.Draft{}, fmt.Errorf("unknown task type %q", taskType)
	}
	return d, nil
}

func checklist(items []string) []models.ChecklistItem {
	out := make([]models.ChecklistItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.ChecklistItem{Item: item})
	}
	return out
}

// parseWhen accepts RFC3339, a wall-clock HH:MM on now's date, or "now".
// An empty string means unscheduled.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return time.Time{}, nil
	case "now":
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	clock, err := time.ParseInLocation("15:04", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339, HH:MM or now", s)
	}
	y, m, day := now.Date()
	return time.Date(y, m, day, clock.Hour(), clock.Minute(), 0, 0, now.Location()).UTC(), nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	ts, err := getTasks("/tasks" + listQuery(listOpts))
	if err != nil {
		return err
	}

	if len(ts) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tTYPE\tTITLE\tSTATUS\tSTAFF\tPRIORITY\tFLAGS")
	for i := range ts {
		t := &ts[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			formatWhen(t.ScheduledTime),
			t.Type(),
			truncate(t.Title, 40),
			workflow.Current(t),
			dashIfEmpty(t.AssignedStaffID),
			t.Priority,
			strings.Join(tasks.AttentionReasons(t), ","))
	}
	w.Flush()
	return nil
}

// listQuery encodes list flags as /tasks query parameters.
func listQuery(o taskListOptions) string {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("type", o.Type)
	set("status", o.Status)
	set("staff", o.Staff)
	set("room", o.Room)
	if o.Anniversary {
		q.Set("anniversary", "true")
	}
	if o.Attention {
		q.Set("attention", "true")
	}
	if o.Active {
		q.Set("active", "true")
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet(taskPath(args[0], ""))
	if err != nil {
		return err
	}

	var t models.Task
	if err := json.Unmarshal(resp, &t); err != nil {
		return err
	}
	printTask(&t)
	return nil
}

func printTask(t *models.Task) {
	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Type:        %s\n", t.Type())
	fmt.Printf("Title:       %s\n", t.Title)
	if t.Description != "" {
		fmt.Printf("Description: %s\n", t.Description)
	}
	fmt.Printf("Status:      %s (%s)\n", workflow.Current(t), t.Status)
	fmt.Printf("Priority:    %s\n", t.Priority)
	if t.RoomID != "" {
		fmt.Printf("Room:        %s\n", t.RoomID)
	}
	fmt.Printf("Scheduled:   %s (%d min)\n", formatWhen(t.ScheduledTime), t.EstimatedDuration)
	fmt.Printf("Assigned:    %s\n", dashIfEmpty(t.AssignedStaffID))
	if t.IsAnniversaryRelated {
		fmt.Println("Anniversary: yes")
	}
	if t.Notes != "" {
		fmt.Printf("Notes:       %s\n", t.Notes)
	}

	switch p := t.Payload.(type) {
	case *models.HousekeepingPayload:
		printChecklist(p.CleaningChecklist)
	case *models.MealPayload:
		fmt.Printf("Guests:      %d\n", p.GuestCount)
		if len(p.DietaryRestrictions) > 0 {
			fmt.Printf("Dietary:     %s\n", strings.Join(p.DietaryRestrictions, ", "))
		}
		fmt.Printf("Needs check: %t\n", p.NeedsCheck)
	case *models.ShuttlePayload:
		fmt.Printf("Route:       %s -> %s\n", p.PickupLocation, p.DropoffLocation)
		fmt.Printf("Vehicle:     %s\n", dashIfEmpty(p.AssignedVehicleID))
		fmt.Printf("Driver:      %s\n", dashIfEmpty(p.AssignedDriverID))
	case *models.CelebrationPayload:
		printChecklist(p.Items)
		if p.CompletionReport != "" {
			fmt.Printf("Report:      %s\n", p.CompletionReport)
		}
	case *models.HelpRequestPayload:
		fmt.Printf("From:        %s %s\n", p.RequesterID, p.RequesterName)
		fmt.Printf("To:          %s\n", strings.Join(p.TargetStaffIDs, ", "))
		if p.AcceptedBy != "" {
			fmt.Printf("Accepted By: %s at %s\n", p.AcceptedBy, p.AcceptedAt.Local().Format(time.RFC822))
		}
	}

	if reasons := tasks.AttentionReasons(t); len(reasons) > 0 {
		fmt.Printf("Attention:   %s\n", strings.Join(reasons, ", "))
	}
	if t.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", t.CompletedAt.Local().Format(time.RFC822))
	}
	fmt.Printf("Created:     %s\n", t.CreatedAt.Local().Format(time.RFC822))
	fmt.Printf("Updated:     %s\n", t.UpdatedAt.Local().Format(time.RFC822))
}

func printChecklist(items []models.ChecklistItem) {
	if len(items) == 0 {
		return
	}
	fmt.Println("Checklist:")
	for _, item := range items {
		box := "[ ]"
		if item.IsChecked {
			box = "[x]"
		}
		fmt.Printf("  %s %s\n", box, item.Item)
	}
}

func printTaskResult(t *models.Task, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("%s %s: %s (%s)\n", t.Type(), t.ID, workflow.Current(t), t.Status)
	return nil
}

func runTaskCandidates(cmd *cobra.Command, args []string) error {
	resp, err := apiGet(taskPath(args[0], "candidates"))
	if err != nil {
		return err
	}
	var result staffing.MatchResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	if len(result.RequiredSkills) > 0 {
		fmt.Printf("Skills: %s\n\n", strings.Join(result.RequiredSkills, ", "))
	}
	if len(result.Candidates) == 0 {
		fmt.Println("No staff on duty")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAFF\tNAME\tROLE\tSCORE\tBUSY\tMATCHED")
		for _, c := range result.Candidates {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				c.Staff.ID, c.Staff.Name, c.Staff.Role, c.Score, c.Busy, strings.Join(c.MatchedSkills, ","))
		}
		w.Flush()
	}

	if len(result.Vehicles) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VEHICLE\tNAME\tSEATS")
		for _, v := range result.Vehicles {
			fmt.Fprintf(w, "%s\t%s\t%d\n", v.ID, v.Name, v.Seats)
		}
		w.Flush()
	}
	return nil
}

func runTaskAudit(cmd *cobra.Command, args []string) error {
	resp, err := apiGet(fmt.Sprintf("%s?limit=%d", taskPath(args[0], "audit"), auditLimit))
	if err != nil {
		return err
	}
	var entries []models.PDREntry
	if err := json.Unmarshal(resp, &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No records found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tOUTCOME\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("Jan 02 15:04:05"), e.Action, e.Outcome, truncate(e.Details, 60))
	}
	w.Flush()
	return nil
}

// --- Helpers ---

func taskPath(id, action string) string {
	p := "/tasks/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02 15:04")
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dashEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
