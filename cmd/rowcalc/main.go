// Command rowcalc is a row-based calculator: each row evaluates one
// arithmetic expression and may bind the result to a variable that later
// rows can reference.
package main

import (
	"fmt"
	"os"

	"github.com/javajack/rowcalc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
