package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and retry dead-lettered jobs",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dead-lettered jobs",
	RunE:  runDLQList,
}

var dlqRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Re-enqueue a dead-lettered job",
	Args:  cobra.ExactArgs(1),
	RunE:  runDLQRetry,
}

func init() {
	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqRetryCmd)
}

func runDLQList(cmd *cobra.Command, _ []string) error {
	jobs, err := client().DLQList(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "dlq is empty")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, headerStyle.Render("ID\tATTEMPTS\tMAX_RETRIES\tCOMMAND"))
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", j.ID, j.Attempts, j.MaxRetries, j.Command)
	}
	return tw.Flush()
}

func runDLQRetry(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := client().DLQRetry(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("retried "+id))
	return nil
}
