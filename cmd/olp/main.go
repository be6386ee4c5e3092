// Command olp sends Open Line Protocol frames and writes receipts.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/olp/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
