package main

import (
	"os"

	"github.com/kioskworks/kioskctl/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
