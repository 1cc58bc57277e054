package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nullforge/queuectl/internal/cliclient"
)

var (
	updateID      string
	updateCommand string
	updateState   string
	updateTimeout int
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Patch an existing job",
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateID, "id", "", "job id (required)")
	updateCmd.Flags().StringVar(&updateCommand, "command", "", "new command")
	updateCmd.Flags().StringVar(&updateState, "state", "", "new state")
	updateCmd.Flags().IntVar(&updateTimeout, "timeout", 0, "new timeout (seconds)")
	cobra.CheckErr(updateCmd.MarkFlagRequired("id"))
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	patch := cliclient.UpdatePatch{ID: updateID}
	if updateCommand != "" {
		patch.Command = &updateCommand
	}
	if updateState != "" {
		patch.State = &updateState
	}
	if updateTimeout > 0 {
		patch.Timeout = &updateTimeout
	}

	if err := client().Update(cmd.Context(), patch); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("updated "+updateID))
	return nil
}
