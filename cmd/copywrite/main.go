package main

import (
	"os"

	"github.com/dgallion1/copywrite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
