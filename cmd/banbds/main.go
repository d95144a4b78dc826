package main

import (
	"os"

	"banbds/cmd/banbds/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
