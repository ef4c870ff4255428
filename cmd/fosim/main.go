package main

import (
	"os"

	"github.com/marketsim/fosim/cmd/fosim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
