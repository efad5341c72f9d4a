// Command cideldillctl is the operator CLI for cideldilld: list and
// edit breakpoints, inspect paused executions, and resume them.
package main

import (
	"fmt"
	"os"

	"github.com/cideldill/cideldill/cmd/cideldillctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
