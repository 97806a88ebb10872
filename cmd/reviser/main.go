package main

import (
	"os"

	"github.com/dshills/reviser/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
