// Command macroctl runs macro row searches, updates and reports against a
// macro-service database from the shell.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
