package main

import (
	"os"

	"utter/cmd/utter/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
