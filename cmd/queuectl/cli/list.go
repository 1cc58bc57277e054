package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listState string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "", "filter by state (pending, processing, completed, failed)")
}

func runList(cmd *cobra.Command, _ []string) error {
	jobs, err := client().List(cmd.Context(), listState)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "no jobs")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, headerStyle.Render("ID\tSTATE\tATTEMPTS\tMAX_RETRIES\tWORKER\tCOMMAND"))
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			j.ID, j.State, j.Attempts, j.MaxRetries, j.WorkerAssigned, j.Command)
	}
	return tw.Flush()
}
