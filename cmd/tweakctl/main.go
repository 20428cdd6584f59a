// Package main is the entry point for the tweakctl CLI.
package main

import (
	"os"

	"github.com/tweakctl/tweakctl/cmd/tweakctl/commands"
)

func main() {
	os.Exit(commands.Execute())
}
