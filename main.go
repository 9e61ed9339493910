package main

import (
	"os"

	"ScraperExtranet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
