package main

import (
	"os"

	"github.com/benchforge/benchforge/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
