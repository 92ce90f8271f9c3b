package main

import (
	"os"

	"github.com/corvid-labs/indexfeed-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
