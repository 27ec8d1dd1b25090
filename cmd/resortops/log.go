package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/fentz26/resortops/internal/models"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Shift handover log",
}

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a handover note",
	RunE:  runLogAdd,
}

var logQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search handover notes",
	RunE:  runLogQuery,
}

var logShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show the notes attached to a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogShow,
}

var (
	logContent string
	logTags    string
	logTaskID  string
	logAuthor  string
	logQuery   string
)

func init() {
	logCmd.AddCommand(logAddCmd, logQueryCmd, logShowCmd)

	logAddCmd.Flags().StringVar(&logContent, "content", "", "Note content (required)")
	logAddCmd.Flags().StringVar(&logTags, "tags", "", "Comma-separated tags")
	logAddCmd.Flags().StringVar(&logTaskID, "task", "", "Associated task ID")
	logAddCmd.Flags().StringVar(&logAuthor, "author", "", "Author staff id")
	logAddCmd.MarkFlagRequired("content")

	logQueryCmd.Flags().StringVar(&logQuery, "q", "", "Search query")
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	body := map[string]string{
		"content": logContent,
		"tags":    logTags,
		"task_id": logTaskID,
		"author":  logAuthor,
	}

	resp, err := apiPost("/log", body)
	if err != nil {
		return err
	}

	var entry models.LogEntry
	if err := json.Unmarshal(resp, &entry); err != nil {
		return err
	}

	fmt.Printf("Added note: %s\n", entry.ID)
	return nil
}

func runLogQuery(cmd *cobra.Command, args []string) error {
	path := "/log"
	if logQuery != "" {
		path += "?q=" + url.QueryEscape(logQuery)
	}
	return printLog(path)
}

func runLogShow(cmd *cobra.Command, args []string) error {
	return printLog(taskPath(args[0], "log"))
}

func printLog(path string) error {
	resp, err := apiGet(path)
	if err != nil {
		return err
	}

	var entries []models.LogEntry
	if err := json.Unmarshal(resp, &entries); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No notes found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tAUTHOR\tTASK\tCONTENT\tTAGS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("Jan 02 15:04"),
			dashIfEmpty(e.Author),
			dashIfEmpty(e.TaskID),
			truncate(e.Content, 50),
			e.Tags)
	}
	w.Flush()
	return nil
}
