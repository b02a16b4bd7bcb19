// Command factorysim runs conveyor factory simulations from the command line.
package main

import "github.com/sarchlab/conveyor/factorysim/cmd"

func main() {
	cmd.Execute()
}
