package main

import (
	"fmt"
	"os"

	"github.com/temirov/reposcan/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the reposcan command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	if !cli.IsReported(executionError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(cli.ExitCode(executionError))
}
