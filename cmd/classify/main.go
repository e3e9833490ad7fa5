package main

import (
	"os"

	"github.com/classify-app/classify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
