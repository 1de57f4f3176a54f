package main

import (
	"os"

	"github.com/nhle/taskapp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
