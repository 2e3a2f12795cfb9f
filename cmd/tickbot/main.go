package main

import (
	"os"

	"github.com/rustyeddy/tickbot/cmd/tickbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
