package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fentz26/resortops/internal/models"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req"},
	Short:   "Ask colleagues for help and answer their requests",
}

var requestAskCmd = &cobra.Command{
	Use:   "ask <what you need>",
	Short: "Send a help request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRequestAsk,
}

var requestInboxCmd = &cobra.Command{
	Use:   "inbox <staff-id>",
	Short: "List pending help requests addressed to a staff member",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestInbox,
}

var requestAcceptCmd = &cobra.Command{
	Use:   "accept <task-id> <staff-id>",
	Short: "Accept a help request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "accept"), map[string]string{"staff_id": args[1]}))
	},
}

var requestCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Close an accepted help request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "complete"), struct{}{}))
	},
}

var requestCancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Withdraw a help request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaskResult(postTask(taskPath(args[0], "cancel"), struct{}{}))
	},
}

var (
	askFrom     string
	askFromName string
	askTo       []string
	askRoom     string
	askPriority string
)

func init() {
	requestCmd.AddCommand(requestAskCmd, requestInboxCmd, requestAcceptCmd, requestCompleteCmd, requestCancelCmd)

	requestAskCmd.Flags().StringVar(&askFrom, "from", "", "Your staff id (required)")
	requestAskCmd.Flags().StringVar(&askFromName, "name", "", "Your name")
	requestAskCmd.Flags().StringArrayVar(&askTo, "to", nil, "Target staff id (repeatable, default everyone)")
	requestAskCmd.Flags().StringVar(&askRoom, "room", "", "Where help is needed")
	requestAskCmd.Flags().StringVar(&askPriority, "priority", string(models.PriorityHigh), "normal, high or urgent")
	requestAskCmd.MarkFlagRequired("from")
}

func runRequestAsk(cmd *cobra.Command, args []string) error {
	d, err := buildDraft(models.TypeHelpRequest, taskAddOptions{
		Title:         strings.Join(args, " "),
		Room:          askRoom,
		At:            "now",
		Priority:      askPriority,
		Requester:     askFrom,
		RequesterName: askFromName,
		To:            askTo,
	}, time.Now())
	if err != nil {
		return err
	}

	t, err := postTask("/tasks", d)
	if err != nil {
		return err
	}
	fmt.Printf("Help request sent: %s\n", t.ID)
	return nil
}

func runRequestInbox(cmd *cobra.Command, args []string) error {
	ts, err := getTasks("/help?staff=" + url.QueryEscape(args[0]))
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		fmt.Println("No pending help requests")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tFROM\tROOM\tPRIORITY\tREQUEST")
	for i := range ts {
		t := &ts[i]
		from := ""
		if h := t.HelpRequest(); h != nil {
			from = h.RequesterID
			if h.RequesterName != "" {
				from += " " + h.RequesterName
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, formatWhen(t.ScheduledTime), from, dashIfEmpty(t.RoomID), t.Priority, truncate(t.Title, 50))
	}
	w.Flush()
	return nil
}
