package main

import (
	"os"

	"github.com/mitescript/mite/cmd/mite/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
