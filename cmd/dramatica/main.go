package main

import (
	"os"

	"github.com/msto63/dramatica/cmd/dramatica/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
