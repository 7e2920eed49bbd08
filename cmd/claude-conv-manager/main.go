package main

import (
	"os"

	"github.com/psaban20/claude-conversation-manager/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
