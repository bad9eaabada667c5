package main

import (
	"os"

	"armorcrypt/cmd/armorcrypt/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
