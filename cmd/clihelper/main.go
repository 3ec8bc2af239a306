package main

import (
	"os"

	"github.com/dshills/clihelper/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
