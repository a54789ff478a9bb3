package main

import (
	"os"

	"github.com/bnema/dipwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
