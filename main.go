package main

import (
	"os"

	"github.com/karimzidan/pmdoc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
