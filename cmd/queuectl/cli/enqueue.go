package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nullforge/queuectl/internal/cliclient"
)

var (
	enqueueID         string
	enqueueCommand    string
	enqueueMaxRetries int
	enqueueTimeout    int
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Insert a new job",
	RunE:  runEnqueue,
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueID, "id", "", "job id (required)")
	enqueueCmd.Flags().StringVar(&enqueueCommand, "command", "", "shell command to run (required)")
	enqueueCmd.Flags().IntVar(&enqueueMaxRetries, "max-retries", 0, "override the configured max_retries")
	enqueueCmd.Flags().IntVar(&enqueueTimeout, "timeout", 0, "override the default per-execution timeout (seconds)")
	cobra.CheckErr(enqueueCmd.MarkFlagRequired("id"))
	cobra.CheckErr(enqueueCmd.MarkFlagRequired("command"))
}

func runEnqueue(cmd *cobra.Command, _ []string) error {
	req := cliclient.EnqueueRequest{ID: enqueueID, Command: enqueueCommand}
	if enqueueMaxRetries > 0 {
		req.MaxRetries = &enqueueMaxRetries
	}
	if enqueueTimeout > 0 {
		req.Timeout = &enqueueTimeout
	}

	id, err := client().Enqueue(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("enqueued "+id))
	return nil
}
