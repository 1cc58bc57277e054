package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nullforge/queuectl/internal/cliclient"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show aggregate job counts and active-worker count",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "live-refreshing TUI view")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	api := client()

	if statusWatch {
		p := tea.NewProgram(newStatusModel(api))
		_, err := p.Run()
		return err
	}

	s, err := api.GetStatus(cmd.Context())
	if err != nil {
		return err
	}
	printStatus(cmd, s)
	return nil
}

func printStatus(cmd *cobra.Command, s cliclient.Status) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("STATUS"))
	fmt.Fprintln(out, labelStyle.Render("pending:")+fmt.Sprint(s.Pending))
	fmt.Fprintln(out, labelStyle.Render("processing:")+fmt.Sprint(s.Processing))
	fmt.Fprintln(out, labelStyle.Render("completed:")+fmt.Sprint(s.Completed))
	fmt.Fprintln(out, labelStyle.Render("failed:")+fmt.Sprint(s.Failed))
	fmt.Fprintln(out, labelStyle.Render("dead:")+fmt.Sprint(s.Dead))
	fmt.Fprintln(out, labelStyle.Render("active workers:")+fmt.Sprint(s.ActiveWorkers))
	fmt.Fprintln(out, labelStyle.Render("pool running:")+fmt.Sprint(s.PoolRunning))
}
