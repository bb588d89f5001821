package main

import (
	"os"

	"github.com/nexa-tasks/nexa/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
