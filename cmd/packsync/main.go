package main

import (
	"os"

	"packsync/cmd/packsync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
