package main

import (
	"os"

	"github.com/iacshield/iacshield/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
