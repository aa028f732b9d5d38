// Command augeps enumerates Pareto-optimal defence schedules with the
// two-stage augmented ε-constraint method.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/augeps/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
