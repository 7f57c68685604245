package main

import (
	"os"

	"github.com/go-jobboard/jobboard/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
