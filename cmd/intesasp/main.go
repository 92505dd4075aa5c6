package main

import (
	"os"

	"github.com/intesasp/xlsx2ofx/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
