// Command puppetc compiles a node's manifests into a JSON catalog: a
// single main() guarded by a panic-recovery handler that prints
// "Internal error" and exits non-zero unless DEBUG=1 asks for the raw
// stack trace, with subcommands dispatched through cobra/pflag.
package main

import (
	"fmt"
	"os"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args[1:]))
}
