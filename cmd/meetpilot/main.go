// Package main provides the meetpilot server and CLI.
//
// Usage:
//
//	meetpilot [flags] <command> [args]
//
// Commands:
//
//	serve    - Run the HTTP and live transcription server
//	agenda   - Create or revise meeting agendas
//	config   - Show or initialize the configuration
//
// Configuration:
//
//	The CLI reads ~/.meetpilot/config.yaml. A .env file in the working
//	directory and the environment override it.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/meetpilot/cmd/meetpilot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
