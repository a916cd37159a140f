// Command attributionctl drives the attribution client from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrymomot/attribution/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
