package main

import (
	"os"

	"fix-format/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
