// Command cideldilld runs the call interception control plane: the
// breakpoint manager, the CID-addressed object store, and the HTTP
// server debuggee proxies and operators talk to.
package main

import (
	"fmt"
	"os"

	"github.com/cideldill/cideldill/cmd/cideldilld/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
