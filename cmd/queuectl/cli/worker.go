package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var workerStartCount int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Control the worker pool",
}

var workerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the worker pool",
	RunE:  runWorkerStart,
}

var workerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Gracefully stop the worker pool",
	RunE:  runWorkerStop,
}

func init() {
	workerStartCmd.Flags().IntVar(&workerStartCount, "count", 1, "number of workers to start")
	workerCmd.AddCommand(workerStartCmd)
	workerCmd.AddCommand(workerStopCmd)
}

func runWorkerStart(cmd *cobra.Command, _ []string) error {
	if err := client().WorkerStart(cmd.Context(), workerStartCount); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("started %d worker(s)", workerStartCount)))
	return nil
}

func runWorkerStop(cmd *cobra.Command, _ []string) error {
	if err := client().WorkerStop(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("worker pool stopped"))
	return nil
}
