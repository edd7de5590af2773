package main

import (
	"os"

	"github.com/remembra/remembra/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
