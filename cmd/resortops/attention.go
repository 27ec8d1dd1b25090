package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/resortops/internal/monitor"
	"github.com/spf13/cobra"
)

var attentionCmd = &cobra.Command{
	Use:   "attention",
	Short: "List open tasks that need a supervisor",
	RunE:  runAttention,
}

func runAttention(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/attention")
	if err != nil {
		return err
	}

	var report monitor.Report
	if err := json.Unmarshal(resp, &report); err != nil {
		return err
	}

	if len(report.Alerts) == 0 {
		fmt.Printf("All clear: %d open tasks\n", report.Open)
		return nil
	}

	fmt.Printf("%d of %d open tasks need attention\n\n", len(report.Alerts), report.Open)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tWHEN\tTYPE\tTITLE\tSTAFF\tREASONS")
	for _, a := range report.Alerts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.TaskID, a.Priority, formatWhen(a.ScheduledTime), a.Type,
			truncate(a.Title, 40), dashIfEmpty(a.AssignedStaffID), strings.Join(a.Reasons, ", "))
	}
	w.Flush()
	return nil
}
