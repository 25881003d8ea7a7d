package main

import (
	"os"

	"github.com/eipforge/eipharvest/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
