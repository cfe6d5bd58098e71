// Package main is the entry point for the livetest CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/livetest/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
