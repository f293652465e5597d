package main

import (
	"os"

	"github.com/fedutinova/tlexport/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
