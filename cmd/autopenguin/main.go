package main

import (
	"fmt"
	"os"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
