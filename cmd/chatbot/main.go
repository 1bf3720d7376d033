// Package main provides the entry point for the chatbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rahul2317-NRK/chatbot9/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
