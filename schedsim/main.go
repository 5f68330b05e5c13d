// Command schedsim runs CPU scheduling simulations.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cpusched/schedsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
