package main

import (
	"os"

	"github.com/forcekit/forcekit/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
