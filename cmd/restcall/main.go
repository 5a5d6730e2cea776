package main

import (
	"os"

	"github.com/adeilh/rakh-rest/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
