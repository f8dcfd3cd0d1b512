package main

import (
	"fmt"
	"os"

	"github.com/temirov/buildexec/cmd/cli"
	"github.com/temirov/buildexec/internal/ui"
	"github.com/temirov/buildexec/internal/utils"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the buildexec command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	logger, loggerCreationError := utils.NewLoggerFactory().CreateLogger(utils.LogLevelError, utils.LogFormatConsole)
	if loggerCreationError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
	ui.NewDiagnosticConsole(logger).Die(executionError.Error())
}
