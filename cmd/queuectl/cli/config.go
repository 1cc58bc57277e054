package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or update a runtime tunable (max_retries, base_delay)",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a tunable",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update a tunable",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := client().ConfigGet(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("value must be numeric: %w", err)
	}
	if err := client().ConfigSet(cmd.Context(), args[0], value); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("%s = %v", args[0], value)))
	return nil
}
