// Command queuectl is the CLI client (C7): a thin passthrough over the
// HTTP API. Exit 0 on success; non-zero with the printed detail otherwise,
// per spec §6.4.
package main

import (
	"fmt"
	"os"

	"github.com/nullforge/queuectl/cmd/queuectl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Detail(err))
		os.Exit(1)
	}
}
