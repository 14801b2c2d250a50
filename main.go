package main

import (
	"os"

	"github.com/TigerArchive/TigerArchive/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
