package main

import (
	"os"

	"github.com/leadmate/leadmate/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
