// Package cli implements the queuectl command tree (C7): a thin passthrough
// over the HTTP API, grounded on storacha-piri's cmd/cli/root.go shape
// (persistent flags bound through viper, one subcommand file per group).
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nullforge/queuectl/internal/cliclient"
)

var addrFlag string

var rootCmd = &cobra.Command{
	Use:           "queuectl",
	Short:         "Client for the queuectl shell-job queue HTTP API",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "queuectl server address (default http://127.0.0.1:8000)")
	cobra.CheckErr(viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")))
	cobra.CheckErr(viper.BindEnv("addr", "QUEUECTL_ADDR"))

	viper.SetDefault("addr", "http://127.0.0.1:8000")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("QUEUECTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dlqCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command, returning the error cobra produced (if
// any) so main can translate it into the spec §6.4 exit-code contract.
func Execute() error {
	return rootCmd.Execute()
}

func client() *cliclient.Client {
	return cliclient.New(viper.GetString("addr"))
}

// Detail renders err the way spec §6.4 expects: the printed detail field
// from the server's {"detail": ...} body, independent of Go's default
// error formatting.
func Detail(err error) string {
	if apiErr, ok := err.(*cliclient.APIError); ok {
		return apiErr.Detail
	}
	return err.Error()
}
