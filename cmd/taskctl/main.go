// taskctl is the command-line client for the taskboard backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ashureev/taskboard/internal/cli/command"
)

func main() {
	// Best effort; TASKBOARD_* variables may come from a local .env.
	_ = godotenv.Load()

	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
