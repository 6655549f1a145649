package main

import (
	"os"

	"github.com/tarjuma/tarjuma/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
