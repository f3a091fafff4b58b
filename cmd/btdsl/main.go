// Command btdsl is the BT-DSL compiler driver's CLI, mirroring the
// teacher's cmd/dwscript Cobra tree.
package main

import (
	"fmt"
	"os"

	"github.com/btdsl/btdsl/cmd/btdsl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
