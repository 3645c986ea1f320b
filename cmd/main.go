package main

import (
	"os"

	"sysup/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
