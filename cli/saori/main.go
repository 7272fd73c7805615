package main

import (
	"os"

	saoricmder "github.com/saorihq/saori/cmd/saori"
)

func main() {
	cmd := saoricmder.NewSaoriCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
