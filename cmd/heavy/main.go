package main

import (
	"os"

	"github.com/mugenyume/make-it-heavy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
