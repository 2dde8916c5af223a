// Command combokeys compiles rig documents into driven combination
// shape keys and inspects, evaluates, and stores the result.
package main

import (
	"fmt"
	"os"

	"github.com/poserig/combokeys/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
